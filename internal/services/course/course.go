// Package course содержит логику каталога курсов.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Repository хранилище каталога.
type Repository interface {
	CreateCourse(ctx context.Context, c models.Course) (*models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	SearchCourses(ctx context.Context, title string) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// Service управляет каталогом курсов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create добавляет курс. Нулевая цена заменяется ценой по умолчанию, пустой статус на available.
func (s *Service) Create(ctx context.Context, c models.Course) (*models.Course, error) {
	const op = "course.Create"

	if strings.TrimSpace(c.Title) == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, errs.ErrBadRequest)
	}
	if c.Price == 0 {
		c.Price = models.DefaultCoursePrice
	}
	if c.Status == "" {
		c.Status = models.CourseAvailable
	}
	if err := validateStatus(c.Status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateCourse(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course created", slog.String("op", op), slog.Int64("course_id", created.ID))
	return created, nil
}

// Get возвращает курс по ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Course, error) {
	const op = "course.Get"
	c, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// List возвращает каталог.
func (s *Service) List(ctx context.Context) ([]*models.Course, error) {
	const op = "course.List"
	list, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Search ищет курсы по подстроке названия без учёта регистра.
func (s *Service) Search(ctx context.Context, title string) ([]*models.Course, error) {
	const op = "course.Search"
	list, err := s.repo.SearchCourses(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update частично обновляет курс.
func (s *Service) Update(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error) {
	const op = "course.Update"
	if upd.Status != nil {
		if err := validateStatus(*upd.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	c, err := s.repo.UpdateCourse(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Remove удаляет курс.
func (s *Service) Remove(ctx context.Context, id int64) error {
	const op = "course.Remove"
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course removed", slog.String("op", op), slog.Int64("course_id", id))
	return nil
}

func validateStatus(status string) error {
	if status != models.CourseAvailable && status != models.CourseFilledUp {
		return fmt.Errorf("%w: unknown course status %q", errs.ErrBadRequest, status)
	}
	return nil
}
