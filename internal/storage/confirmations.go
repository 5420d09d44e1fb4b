package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

const confirmationColumns = `id, session_id, course_id, user_id, amount_charged, status,
	last_error, attempts, created_at, updated_at`

func scanConfirmation(row scanner) (*models.PaymentConfirmation, error) {
	var c models.PaymentConfirmation
	if err := row.Scan(&c.ID, &c.SessionID, &c.CourseID, &c.UserID, &c.AmountCharged,
		&c.Status, &c.LastError, &c.Attempts, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreatePendingConfirmation сохраняет запись со статусом pending.
// Если запись для session_id уже есть, возвращает её и created=false.
func (s *Storage) CreatePendingConfirmation(ctx context.Context, c models.PaymentConfirmation) (*models.PaymentConfirmation, bool, error) {
	const op = "storage.CreatePendingConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return nil, false, err
	}

	query := `INSERT INTO payment_confirmations (id, session_id, course_id, user_id, amount_charged, status)
			  VALUES ($1, $2, $3, $4, $5, 'pending')
			  ON CONFLICT (session_id) DO NOTHING
			  RETURNING ` + confirmationColumns
	created, err := scanConfirmation(s.DB.QueryRowContext(ctx, query,
		c.ID, c.SessionID, c.CourseID, c.UserID, c.AmountCharged))
	if err == nil {
		return created, true, nil
	}
	mapped := mapErr(op, err)
	if !isNotFound(mapped) {
		return nil, false, mapped
	}

	existing, err := s.GetConfirmation(ctx, c.SessionID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return existing, false, nil
}

// GetConfirmation возвращает запись по идентификатору сессии провайдера.
func (s *Storage) GetConfirmation(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error) {
	const op = "storage.GetConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	c, err := scanConfirmation(s.DB.QueryRowContext(ctx,
		`SELECT `+confirmationColumns+` FROM payment_confirmations WHERE session_id = $1`, sessionID))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

// MarkConfirmation меняет статус записи и увеличивает счётчик попыток.
func (s *Storage) MarkConfirmation(ctx context.Context, sessionID, status, lastError string) error {
	const op = "storage.MarkConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payment_confirmations
		 SET status = $1, last_error = $2, attempts = attempts + 1, updated_at = NOW()
		 WHERE session_id = $3`, status, lastError, sessionID)
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

// ListConfirmations возвращает записи с данным статусом; пустой статус означает все.
func (s *Storage) ListConfirmations(ctx context.Context, status string) ([]*models.PaymentConfirmation, error) {
	const op = "storage.ListConfirmations"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+confirmationColumns+` FROM payment_confirmations
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.PaymentConfirmation, 0)
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
