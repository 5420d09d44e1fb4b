package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGridSender отправляет письма через SendGrid v3 API.
type SendGridSender struct {
	apiKey string
	host   string
	from   string
	log    *slog.Logger
}

// NewSendGridSender создаёт SendGridSender. Пустой host означает боевой API.
func NewSendGridSender(apiKey, from, host string, log *slog.Logger) *SendGridSender {
	if host == "" {
		host = sendGridHost
	}
	return &SendGridSender{apiKey: apiKey, host: host, from: from, log: log}
}

// Send отправляет письмо и считает ошибкой любой ответ со статусом >= 300.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	const op = "mail.SendGridSender.Send"

	m := sgmail.NewSingleEmail(
		sgmail.NewEmail("", s.from),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, resp.Body)
	}
	s.log.Info("email sent", slog.String("to", msg.To), slog.String("transport", "sendgrid"))
	return nil
}
