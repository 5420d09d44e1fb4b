// Package mail отправляет письма через SMTP (gomail) или SendGrid.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-enrollment/internal/config"
)

// Message письмо одному получателю.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender отправляет письмо.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New выбирает транспорт по cfg.Provider.
func New(cfg config.Mail, log *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp", "":
		return NewSMTPSender(cfg, log), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, "", log), nil
	default:
		return nil, fmt.Errorf("mail.New: unknown provider %q", cfg.Provider)
	}
}
