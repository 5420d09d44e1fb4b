// Package payment запускает hosted checkout и подтверждает оплату с записью на курс.
//
// Подтверждение оформлено как сага: после того как провайдер сообщил об оплате,
// сохраняется запись payment_confirmations в статусе pending, затем выполняется
// запись в журнал и запись переводится в enrolled или failed. Неудачные
// подтверждения видны администратору и могут быть повторены через Retry.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/course-enrollment/internal/events"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/metrics"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/paymentprovider"
	"github.com/magabrotheeeer/course-enrollment/internal/services/enrollment"
)

// MessageVerified ответ при успешном подтверждении.
const MessageVerified = "Payment verified and user enrolled."

var (
	// ErrEmailRequired не передан email плательщика.
	ErrEmailRequired = fmt.Errorf("%w: user email is required for payment", errs.ErrBadRequest)
	// ErrAlreadyConfirmed подтверждение уже завершено записью на курс.
	ErrAlreadyConfirmed = fmt.Errorf("%w: payment already confirmed", errs.ErrConflict)
)

// Repository хранилище, используемое оплатой.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreatePendingConfirmation(ctx context.Context, c models.PaymentConfirmation) (*models.PaymentConfirmation, bool, error)
	GetConfirmation(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error)
	MarkConfirmation(ctx context.Context, sessionID, status, lastError string) error
	ListConfirmations(ctx context.Context, status string) ([]*models.PaymentConfirmation, error)
}

// Enroller запись в журнал.
type Enroller interface {
	Enroll(ctx context.Context, req models.EnrollRequest, actor models.Actor) (*models.EnrollAck, error)
}

// Config параметры сессий и сумм. Суммы в минимальных единицах валюты.
type Config struct {
	Currency       string
	SuccessURL     string
	CancelURL      string
	FallbackAmount int64
	NominalAmount  int64
}

// ConfirmResult результат подтверждения оплаты.
type ConfirmResult struct {
	Success      bool                        `json:"success"`
	Message      string                      `json:"message"`
	EnrollResult *models.EnrollAck           `json:"enrollResult"`
	Confirmation *models.PaymentConfirmation `json:"confirmation,omitempty"`
}

// Service оплата курсов.
type Service struct {
	provider  paymentprovider.Provider
	repo      Repository
	enroller  Enroller
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       Config
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт Service.
func New(provider paymentprovider.Provider, repo Repository, enroller Enroller, publisher events.Publisher,
	m *metrics.Metrics, cfg Config, log *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		repo:      repo,
		enroller:  enroller,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Checkout создаёт сессию оплаты курса и возвращает URL для перенаправления.
// Локальное состояние не сохраняется.
func (s *Service) Checkout(ctx context.Context, courseID int64, email string) (string, error) {
	const op = "payment.Checkout"
	log := s.log.With(slog.String("op", op), slog.Int64("course_id", courseID))

	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmailRequired)
	}

	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, enrollment.ErrCourseNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutParams{
		CourseID:      course.ID,
		ProductName:   course.Title,
		UnitAmount:    s.amountFor(course),
		Currency:      s.cfg.Currency,
		CustomerEmail: email,
		SuccessURL:    successURL(s.cfg.SuccessURL, course.ID),
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		s.metrics.CheckoutSessions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if session.URL == "" {
		s.metrics.CheckoutSessions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%s: provider returned session %s without url", op, session.ID)
	}

	s.metrics.CheckoutSessions.WithLabelValues("created").Inc()
	log.Info("checkout session created", slog.String("session_id", session.ID))
	return session.URL, nil
}

// amountFor переводит цену курса в минимальные единицы. Нулевая цена заменяется FallbackAmount.
func (s *Service) amountFor(c *models.Course) int64 {
	amount := int64(math.Round(c.Price * 100))
	if amount <= 0 {
		return s.cfg.FallbackAmount
	}
	return amount
}

func successURL(base string, courseID int64) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "session_id={CHECKOUT_SESSION_ID}&courseId=" + strconv.FormatInt(courseID, 10)
}

// Confirm проверяет оплату сессии и записывает пользователя на курс.
// Любая неудача возвращается как errs.ErrPaymentVerification.
// Повторное подтверждение уже завершённой сессии не создаёт вторую запись.
func (s *Service) Confirm(ctx context.Context, sessionID string, courseID, userID int64) (*ConfirmResult, error) {
	const op = "payment.Confirm"
	log := s.log.With(
		slog.String("op", op),
		slog.String("session_id", sessionID),
		slog.Int64("course_id", courseID),
		slog.Int64("user_id", userID),
	)

	session, err := s.paidSession(ctx, sessionID)
	if err != nil {
		log.Warn("payment not verified", sl.Err(err))
		s.metrics.PaymentConfirmation.WithLabelValues("not_paid").Inc()
		return nil, verificationFailed(op, err)
	}

	rec, created, err := s.repo.CreatePendingConfirmation(ctx, models.PaymentConfirmation{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		CourseID:      courseID,
		UserID:        userID,
		AmountCharged: session.AmountTotal,
	})
	if err != nil {
		log.Error("failed to persist confirmation", sl.Err(err))
		s.metrics.PaymentConfirmation.WithLabelValues("error").Inc()
		return nil, verificationFailed(op, err)
	}
	if !created && rec.Status == models.ConfirmationEnrolled {
		log.Info("session already confirmed")
		s.metrics.PaymentConfirmation.WithLabelValues("duplicate").Inc()
		return enrolledResult(rec), nil
	}

	return s.complete(ctx, op, log, rec)
}

// Retry повторяет запись на курс для подтверждения в статусе pending или failed.
func (s *Service) Retry(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	const op = "payment.Retry"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID))

	rec, err := s.repo.GetConfirmation(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rec.Status == models.ConfirmationEnrolled {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyConfirmed)
	}

	if _, err := s.paidSession(ctx, sessionID); err != nil {
		log.Warn("payment not verified", sl.Err(err))
		s.fail(ctx, log, rec, err)
		return nil, verificationFailed(op, err)
	}
	return s.complete(ctx, op, log, rec)
}

// ListConfirmations возвращает подтверждения с данным статусом; пустой статус означает все.
func (s *Service) ListConfirmations(ctx context.Context, status string) ([]*models.PaymentConfirmation, error) {
	const op = "payment.ListConfirmations"
	switch status {
	case "", models.ConfirmationPending, models.ConfirmationEnrolled, models.ConfirmationFailed:
	default:
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, errs.ErrBadRequest, status)
	}
	list, err := s.repo.ListConfirmations(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *Service) paidSession(ctx context.Context, sessionID string) (*paymentprovider.Session, error) {
	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Paid() {
		return nil, fmt.Errorf("session payment status %q", session.PaymentStatus)
	}
	return session, nil
}

// complete выполняет запись в журнал для сохранённого подтверждения.
// В журнал передаётся NominalAmount, а не фактически списанная сумма.
func (s *Service) complete(ctx context.Context, op string, log *slog.Logger, rec *models.PaymentConfirmation) (*ConfirmResult, error) {
	user, err := s.repo.GetUserByID(ctx, rec.UserID)
	if err != nil {
		s.fail(ctx, log, rec, err)
		return nil, verificationFailed(op, err)
	}

	ack, err := s.enroller.Enroll(ctx,
		models.EnrollRequest{CourseID: rec.CourseID, Payment: s.cfg.NominalAmount},
		models.Actor{Username: user.Username, Role: user.Role},
	)
	if err == nil && !ack.Enrolled {
		err = errors.New(ack.Message)
	}
	if err != nil {
		s.fail(ctx, log, rec, err)
		return nil, verificationFailed(op, err)
	}

	if err := s.repo.MarkConfirmation(ctx, rec.SessionID, models.ConfirmationEnrolled, ""); err != nil {
		log.Error("enrolled but failed to mark confirmation", sl.Err(err))
		s.publishConfirmation(ctx, log, events.ConfirmationUnmarked, rec, err)
	} else {
		rec.Status = models.ConfirmationEnrolled
		rec.Attempts++
	}

	s.metrics.PaymentConfirmation.WithLabelValues("enrolled").Inc()
	log.Info("payment verified and user enrolled")
	return &ConfirmResult{
		Success:      true,
		Message:      MessageVerified,
		EnrollResult: ack,
		Confirmation: rec,
	}, nil
}

// fail помечает подтверждение как failed и публикует событие для разбора вручную.
func (s *Service) fail(ctx context.Context, log *slog.Logger, rec *models.PaymentConfirmation, cause error) {
	log.Error("payment confirmation failed", sl.Err(cause))
	s.metrics.PaymentConfirmation.WithLabelValues("failed").Inc()

	if err := s.repo.MarkConfirmation(ctx, rec.SessionID, models.ConfirmationFailed, cause.Error()); err != nil {
		log.Error("failed to mark confirmation", sl.Err(err))
	}
	s.publishConfirmation(ctx, log, events.ConfirmationFailed, rec, cause)
}

func (s *Service) publishConfirmation(ctx context.Context, log *slog.Logger, key string, rec *models.PaymentConfirmation, cause error) {
	event := events.ConfirmationFailedEvent{
		SessionID:  rec.SessionID,
		CourseID:   rec.CourseID,
		UserID:     rec.UserID,
		Reason:     cause.Error(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		log.Warn("failed to publish confirmation event", sl.Err(err), slog.String("key", key))
	}
}

func enrolledResult(rec *models.PaymentConfirmation) *ConfirmResult {
	return &ConfirmResult{
		Success:      true,
		Message:      MessageVerified,
		EnrollResult: &models.EnrollAck{Message: enrollment.MessageEnrolled, Enrolled: true},
		Confirmation: rec,
	}
}

// verificationFailed скрывает причину за errs.ErrPaymentVerification, сохраняя её текст.
func verificationFailed(op string, cause error) error {
	return fmt.Errorf("%s: %w: %v", op, errs.ErrPaymentVerification, cause)
}
