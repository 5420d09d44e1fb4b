// Package user содержит логику регистрации, профиля и сброса пароля.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/password"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// ErrInvalidCode код подтверждения не подошёл.
var ErrInvalidCode = fmt.Errorf("%w: invalid or expired verification code", errs.ErrBadRequest)

// Repository хранилище учётных записей.
type Repository interface {
	CreateUser(ctx context.Context, u models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, username string, upd models.ProfileUpdate) (*models.User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// CodeChecker проверяет и погашает коды подтверждения.
type CodeChecker interface {
	Lookup(ctx context.Context, email, code string) (*models.VerificationCode, error)
	Consume(ctx context.Context, id int64) error
}

// SignupInput данные регистрации.
type SignupInput struct {
	FirstName   string
	LastName    string
	Gender      string
	PhoneNumber string
	Username    string
	Email       string
	Password    string
	Role        string
	DateOfBirth *time.Time
}

// ProfileInput частичное обновление профиля. Password хэшируется перед сохранением.
type ProfileInput struct {
	FirstName   *string
	LastName    *string
	Gender      *string
	PhoneNumber *string
	Email       *string
	Password    *string
	DateOfBirth *time.Time
}

// Service управляет учётными записями.
type Service struct {
	repo  Repository
	codes CodeChecker
	log   *slog.Logger
}

// New создаёт Service.
func New(repo Repository, codes CodeChecker, log *slog.Logger) *Service {
	return &Service{repo: repo, codes: codes, log: log}
}

// Signup хэширует пароль и создаёт пользователя. Пустая роль означает student.
func (s *Service) Signup(ctx context.Context, in SignupInput) (int64, error) {
	const op = "user.Signup"

	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleAdmin {
		return 0, fmt.Errorf("%s: %w: unknown role %q", op, errs.ErrBadRequest, role)
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateUser(ctx, models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Gender:       in.Gender,
		PhoneNumber:  in.PhoneNumber,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		DateOfBirth:  in.DateOfBirth,
		Role:         role,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("op", op), slog.Int64("user_id", id), slog.String("role", role))
	return id, nil
}

// UpdateProfile частично обновляет профиль пользователя.
func (s *Service) UpdateProfile(ctx context.Context, username string, in ProfileInput) (*models.User, error) {
	const op = "user.UpdateProfile"

	upd := models.ProfileUpdate{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Gender:      in.Gender,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		DateOfBirth: in.DateOfBirth,
	}
	if in.Password != nil {
		hashed, err := password.GetHash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.PasswordHash = &hashed
	}

	u, err := s.repo.UpdateUser(ctx, username, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ResetPassword меняет пароль по коду подтверждения, отправленному на email.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "user.ResetPassword"

	vc, err := s.codes.Lookup(ctx, email, code)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidCode)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdatePasswordByEmail(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.codes.Consume(ctx, vc.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("op", op))
	return nil
}

// FindByID возвращает пользователя по ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "user.FindByID"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByUsername возвращает пользователя по имени.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "user.FindByUsername"
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByEmail возвращает пользователя по почте.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "user.FindByEmail"
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
