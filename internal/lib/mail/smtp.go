package mail

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/course-enrollment/internal/config"
)

// SMTPSender отправляет письма через SMTP с STARTTLS.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    *slog.Logger
}

// NewSMTPSender создаёт SMTPSender.
func NewSMTPSender(cfg config.Mail, log *slog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.From,
		log:    log,
	}
}

func (s *SMTPSender) message(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return m
}

// Send отправляет письмо. gomail не принимает контекст, поэтому отмена
// проверяется только перед соединением.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	const op = "mail.SMTPSender.Send"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := s.dialer.DialAndSend(s.message(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent", slog.String("to", msg.To), slog.String("transport", "smtp"))
	return nil
}
