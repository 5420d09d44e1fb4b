// Package enrollment ведёт журнал записей студентов на курсы.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/events"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/metrics"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

const (
	// MessageEnrolled ответ при успешной записи.
	MessageEnrolled = "Congratulations, course enrolled."
	// MessageFailed ответ при недостаточной оплате.
	MessageFailed = "Course enrollment failed."
)

var (
	// ErrCourseNotFound курс не найден.
	ErrCourseNotFound = fmt.Errorf("%w: course not found", errs.ErrNotFound)
	// ErrStudentNotFound пользователь не найден.
	ErrStudentNotFound = fmt.Errorf("%w: student not found", errs.ErrNotFound)
	// ErrNotStudent записываться могут только студенты.
	ErrNotStudent = fmt.Errorf("%w: only students can enroll", errs.ErrForbidden)
)

// Repository хранилище, нужное для записи в журнал.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateEnrollment(ctx context.Context, e models.Enrollment, limits models.EnrollmentLimits) (int64, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListEnrollments(ctx context.Context) ([]*models.Enrollment, error)
}

// Config правила записи.
type Config struct {
	MinPayment int64
	Limits     models.EnrollmentLimits
}

// Service пишет строки журнала записей.
type Service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       Config
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт Service.
func New(repo Repository, publisher events.Publisher, m *metrics.Metrics, cfg Config, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Enroll записывает actor на курс. Недостаточная оплата даёт мягкий отказ без ошибки.
// Повторные вызовы создают отдельные строки, если не включён UniquePerStudent.
func (s *Service) Enroll(ctx context.Context, req models.EnrollRequest, actor models.Actor) (*models.EnrollAck, error) {
	const op = "enrollment.Enroll"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("course_id", req.CourseID),
		slog.String("username", actor.Username),
	)

	if req.Payment < s.cfg.MinPayment {
		log.Info("payment below minimum", slog.Int64("payment", req.Payment))
		s.metrics.Enrollments.WithLabelValues("insufficient_payment").Inc()
		return &models.EnrollAck{Message: MessageFailed}, nil
	}

	course, err := s.repo.GetCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if actor.Role != models.RoleStudent {
		s.metrics.Enrollments.WithLabelValues("forbidden").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrNotStudent)
	}

	student, err := s.repo.GetUserByUsername(ctx, actor.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrStudentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := models.Enrollment{
		StudentID:   student.ID,
		StudentName: student.DisplayName(),
		CourseID:    course.ID,
		CourseName:  course.Title,
		Payment:     req.Payment,
	}
	id, err := s.repo.CreateEnrollment(ctx, row, s.cfg.Limits)
	if err != nil {
		s.metrics.Enrollments.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Enrollments.WithLabelValues("enrolled").Inc()
	log.Info("student enrolled", slog.Int64("enrollment_id", id))

	event := events.EnrollmentCreatedEvent{
		EnrollmentID: id,
		StudentID:    student.ID,
		CourseID:     course.ID,
		Payment:      req.Payment,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.EnrollmentCreated, event); err != nil {
		log.Warn("failed to publish enrollment event", sl.Err(err))
	}

	return &models.EnrollAck{Message: MessageEnrolled, Enrolled: true}, nil
}

// ListForStudent возвращает записи студента по username.
func (s *Service) ListForStudent(ctx context.Context, username string) ([]*models.Enrollment, error) {
	const op = "enrollment.ListForStudent"

	student, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrStudentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := s.repo.ListEnrollmentsByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// ListAll возвращает весь журнал.
func (s *Service) ListAll(ctx context.Context) ([]*models.Enrollment, error) {
	const op = "enrollment.ListAll"
	list, err := s.repo.ListEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
