package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

const userColumns = `id, first_name, last_name, gender, phone_number, username, email,
	password_hash, date_of_birth, role, created_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var dob sql.NullTime
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Gender, &u.PhoneNumber,
		&u.Username, &u.Email, &u.PasswordHash, &dob, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	if dob.Valid {
		u.DateOfBirth = &dob.Time
	}
	return &u, nil
}

// CreateUser сохраняет пользователя и возвращает его ID.
// Повтор username или email возвращается как errs.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO users (first_name, last_name, gender, phone_number, username,
			      email, password_hash, date_of_birth, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query, u.FirstName, u.LastName, u.Gender, u.PhoneNumber,
		u.Username, u.Email, u.PasswordHash, u.DateOfBirth, u.Role).Scan(&id)
	if err != nil {
		return 0, mapErr(op, err)
	}
	return id, nil
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByID", "id = $1", id)
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", "username = $1", username)
}

// GetUserByEmail возвращает пользователя по почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByEmail", "email = $1", email)
}

// UpdateUser частично обновляет профиль и возвращает новое состояние.
func (s *Storage) UpdateUser(ctx context.Context, username string, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users SET
			      first_name    = COALESCE($1, first_name),
			      last_name     = COALESCE($2, last_name),
			      gender        = COALESCE($3, gender),
			      phone_number  = COALESCE($4, phone_number),
			      email         = COALESCE($5, email),
			      date_of_birth = COALESCE($6, date_of_birth),
			      password_hash = COALESCE($7, password_hash)
			  WHERE username = $8
			  RETURNING ` + userColumns
	row := s.DB.QueryRowContext(ctx, query, upd.FirstName, upd.LastName, upd.Gender,
		upd.PhoneNumber, upd.Email, upd.DateOfBirth, upd.PasswordHash, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// UpdatePasswordByEmail заменяет хэш пароля пользователя с данной почтой.
func (s *Storage) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdatePasswordByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
