// Package verification выдаёт и проверяет одноразовые коды подтверждения почты.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/code"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/mail"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/metrics"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// ErrCodeNotFound код не найден или истёк.
var ErrCodeNotFound = fmt.Errorf("%w: verification code not found or expired", errs.ErrNotFound)

// Repository хранилище кодов.
type Repository interface {
	CreateVerificationCode(ctx context.Context, email, code string, createdAt time.Time) (int64, error)
	FindVerificationCode(ctx context.Context, email, code string) (*models.VerificationCode, error)
	DeleteVerificationCode(ctx context.Context, id int64) error
}

// Service выдаёт коды и проверяет их в пределах окна действия.
type Service struct {
	repo     Repository
	mailer   mail.Sender
	metrics  *metrics.Metrics
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
	generate func() (string, error)
}

// New создаёт Service. ttl окно действия кода.
func New(repo Repository, mailer mail.Sender, m *metrics.Metrics, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		metrics:  m,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		generate: code.Generate,
	}
}

// Issue генерирует код, сохраняет его и отправляет на почту.
func (s *Service) Issue(ctx context.Context, email string) error {
	const op = "verification.Issue"
	log := s.log.With(slog.String("op", op))

	vc, err := s.generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.repo.CreateVerificationCode(ctx, email, vc, s.now().UTC()); err != nil {
		s.metrics.VerificationCodes.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	minutes := int(s.ttl.Minutes())
	msg := mail.Message{
		To:      email,
		Subject: "Your verification code",
		Text:    fmt.Sprintf("Your verification code is %s. It is valid for %d minutes.", vc, minutes),
		HTML: fmt.Sprintf(`<p>Your verification code is:</p>
<h2 style="letter-spacing:4px">%s</h2>
<p>The code is valid for %d minutes. If you did not request it, ignore this email.</p>`, vc, minutes),
	}
	if err = s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send verification code", sl.Err(err))
		s.metrics.VerificationCodes.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.VerificationCodes.WithLabelValues("issued").Inc()
	log.Info("verification code issued")
	return nil
}

// Lookup возвращает код, если он найден и не старше окна действия.
// Найденный истёкший код удаляется.
func (s *Service) Lookup(ctx context.Context, email, value string) (*models.VerificationCode, error) {
	const op = "verification.Lookup"

	vc, err := s.repo.FindVerificationCode(ctx, email, value)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCodeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.now().Sub(vc.CreatedAt) > s.ttl {
		if err := s.repo.DeleteVerificationCode(ctx, vc.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.VerificationCodes.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrCodeNotFound)
	}
	return vc, nil
}

// Consume удаляет код после успешного использования.
func (s *Service) Consume(ctx context.Context, id int64) error {
	const op = "verification.Consume"
	if err := s.repo.DeleteVerificationCode(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.VerificationCodes.WithLabelValues("redeemed").Inc()
	return nil
}

// Redeem проверяет код и сразу его погашает. Неверный или истёкший код даёт false без ошибки.
func (s *Service) Redeem(ctx context.Context, email, value string) (bool, error) {
	const op = "verification.Redeem"

	vc, err := s.Lookup(ctx, email, value)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Consume(ctx, vc.ID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
