package models

import "time"

// VerificationCode одноразовый код, отправленный на почту.
type VerificationCode struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
