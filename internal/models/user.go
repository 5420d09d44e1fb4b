// Package models содержит доменные модели платформы записи на курсы:
// пользователей, курсы, записи журнала, коды подтверждения и подтверждения оплат.
package models

import (
	"strings"
	"time"
)

const (
	// RoleStudent роль студента, только она может записываться на курсы.
	RoleStudent = "student"
	// RoleAdmin роль администратора каталога.
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       string     `json:"gender,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DisplayName возвращает имя для снимков в журнале записей: "имя фамилия".
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Summary краткие данные пользователя, возвращаемые при входе.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Summarize формирует Summary; пустые имя и почта заменяются username.
func (u *User) Summarize() Summary {
	name := strings.TrimSpace(u.DisplayName())
	if name == "" {
		name = u.Username
	}
	email := u.Email
	if email == "" {
		email = u.Username
	}
	return Summary{ID: u.ID, Name: name, Email: email, Role: u.Role}
}

// ProfileUpdate частичное обновление профиля; nil-поля не изменяются.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Gender      *string
	PhoneNumber *string
	Email       *string
	DateOfBirth *time.Time
	// PasswordHash уже захэширован сервисом.
	PasswordHash *string
}

// Actor идентичность, от имени которой выполняется запись на курс.
type Actor struct {
	Username string
	Role     string
}
