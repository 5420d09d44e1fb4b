package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

const enrollmentColumns = `id, student_id, student_name, course_id, course_name, payment, created_at`

const insertEnrollment = `INSERT INTO enrollments (student_id, student_name, course_id, course_name, payment)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

// CreateEnrollment добавляет строку в журнал записей и возвращает её ID.
// Без ограничений это одна вставка; при включённых ограничениях проверки
// и вставка выполняются в транзакции с блокировкой строки курса.
func (s *Storage) CreateEnrollment(ctx context.Context, e models.Enrollment, limits models.EnrollmentLimits) (int64, error) {
	const op = "storage.CreateEnrollment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	if !limits.UniquePerStudent && !limits.EnforceCapacity {
		var id int64
		err := s.DB.QueryRowContext(ctx, insertEnrollment,
			e.StudentID, e.StudentName, e.CourseID, e.CourseName, e.Payment).Scan(&id)
		if err != nil {
			return 0, mapErr(op, err)
		}
		return id, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var capacity sql.NullInt32
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM courses WHERE id = $1 FOR UPDATE`, e.CourseID).Scan(&capacity)
	if err != nil {
		return 0, mapErr(op, err)
	}

	if limits.UniquePerStudent {
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
			e.StudentID, e.CourseID).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyEnrolled)
		}
	}

	if limits.EnforceCapacity && capacity.Valid {
		var taken int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, e.CourseID).Scan(&taken)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if taken >= int(capacity.Int32) {
			return 0, fmt.Errorf("%s: %w", op, ErrCourseFull)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx, insertEnrollment,
		e.StudentID, e.StudentName, e.CourseID, e.CourseName, e.Payment).Scan(&id)
	if err != nil {
		return 0, mapErr(op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Storage) listEnrollments(ctx context.Context, op, query string, args ...any) ([]*models.Enrollment, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.StudentName, &e.CourseID,
			&e.CourseName, &e.Payment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListEnrollmentsByStudent возвращает записи студента в порядке создания.
func (s *Storage) ListEnrollmentsByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	return s.listEnrollments(ctx, "storage.ListEnrollmentsByStudent",
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 ORDER BY id`, studentID)
}

// ListEnrollments возвращает весь журнал.
func (s *Storage) ListEnrollments(ctx context.Context) ([]*models.Enrollment, error) {
	return s.listEnrollments(ctx, "storage.ListEnrollments",
		`SELECT `+enrollmentColumns+` FROM enrollments ORDER BY id`)
}
