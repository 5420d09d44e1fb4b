package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

const courseColumns = `id, title, description, instructor, enrollment_deadline, starting_date,
	type, status, price, capacity, created_at`

func scanCourse(row scanner) (*models.Course, error) {
	var c models.Course
	var capacity sql.NullInt32
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Instructor, &c.EnrollmentDeadline,
		&c.StartingDate, &c.Type, &c.Status, &c.Price, &capacity, &c.CreatedAt); err != nil {
		return nil, err
	}
	if capacity.Valid {
		v := int(capacity.Int32)
		c.Capacity = &v
	}
	return &c, nil
}

func (s *Storage) listCourses(ctx context.Context, op, query string, args ...any) ([]*models.Course, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
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

// CreateCourse добавляет курс в каталог.
func (s *Storage) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	const op = "storage.CreateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO courses (title, description, instructor, enrollment_deadline,
			      starting_date, type, status, price, capacity)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + courseColumns
	row := s.DB.QueryRowContext(ctx, query, c.Title, c.Description, c.Instructor,
		c.EnrollmentDeadline, c.StartingDate, c.Type, c.Status, c.Price, c.Capacity)
	created, err := scanCourse(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return created, nil
}

// GetCourse возвращает курс по ID.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	c, err := scanCourse(s.DB.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

// ListCourses возвращает весь каталог.
func (s *Storage) ListCourses(ctx context.Context) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.listCourses(ctx, op, `SELECT `+courseColumns+` FROM courses ORDER BY id`)
}

// SearchCourses ищет курсы по подстроке названия без учёта регистра.
func (s *Storage) SearchCourses(ctx context.Context, title string) ([]*models.Course, error) {
	const op = "storage.SearchCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(title) + "%"
	return s.listCourses(ctx, op,
		`SELECT `+courseColumns+` FROM courses WHERE title ILIKE $1 ESCAPE '\' ORDER BY id`, pattern)
}

// UpdateCourse частично обновляет курс.
func (s *Storage) UpdateCourse(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error) {
	const op = "storage.UpdateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE courses SET
			      title               = COALESCE($1, title),
			      description         = COALESCE($2, description),
			      instructor          = COALESCE($3, instructor),
			      enrollment_deadline = COALESCE($4, enrollment_deadline),
			      starting_date       = COALESCE($5, starting_date),
			      type                = COALESCE($6, type),
			      status              = COALESCE($7, status),
			      price               = COALESCE($8, price),
			      capacity            = COALESCE($9, capacity)
			  WHERE id = $10
			  RETURNING ` + courseColumns
	row := s.DB.QueryRowContext(ctx, query, upd.Title, upd.Description, upd.Instructor,
		upd.EnrollmentDeadline, upd.StartingDate, upd.Type, upd.Status, upd.Price, upd.Capacity, id)
	c, err := scanCourse(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

// DeleteCourse удаляет курс. Записи журнала по курсу сохраняются.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
