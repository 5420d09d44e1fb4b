package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// CreateVerificationCode сохраняет код с временем выдачи.
func (s *Storage) CreateVerificationCode(ctx context.Context, email, code string, createdAt time.Time) (int64, error) {
	const op = "storage.CreateVerificationCode"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO verification_codes (email, code, created_at) VALUES ($1, $2, $3) RETURNING id`,
		email, code, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// FindVerificationCode возвращает последний выданный код для пары (email, code).
func (s *Storage) FindVerificationCode(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	const op = "storage.FindVerificationCode"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var vc models.VerificationCode
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, code, created_at FROM verification_codes
		 WHERE email = $1 AND code = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, email, code).Scan(&vc.ID, &vc.Email, &vc.Code, &vc.CreatedAt)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &vc, nil
}

// DeleteVerificationCode удаляет код по ID.
func (s *Storage) DeleteVerificationCode(ctx context.Context, id int64) error {
	const op = "storage.DeleteVerificationCode"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM verification_codes WHERE id = $1`, id)
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
