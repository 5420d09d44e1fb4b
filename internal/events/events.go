// Package events публикует доменные события платформы в RabbitMQ.
// Потребители событий находятся вне этого сервиса.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/rabbitmq"
)

const (
	// EnrollmentCreated ключ события о новой записи в журнале.
	EnrollmentCreated = "enrollment.created"
	// ConfirmationFailed ключ события о неудачном зачислении после оплаты.
	ConfirmationFailed = "payment.confirmation_failed"
	// ConfirmationUnmarked ключ события: запись в журнал создана, но подтверждение
	// осталось в статусе pending. Повторное подтверждение такой сессии создаст вторую запись.
	ConfirmationUnmarked = "payment.confirmation_unmarked"
)

// EnrollmentCreatedEvent тело события EnrollmentCreated.
type EnrollmentCreatedEvent struct {
	EnrollmentID int64     `json:"enrollment_id"`
	StudentID    int64     `json:"student_id"`
	CourseID     int64     `json:"course_id"`
	Payment      int64     `json:"payment"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ConfirmationFailedEvent тело событий ConfirmationFailed и ConfirmationUnmarked.
type ConfirmationFailedEvent struct {
	SessionID  string    `json:"session_id"`
	CourseID   int64     `json:"course_id"`
	UserID     int64     `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует событие по ключу маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPPublisher публикует события в exchange RabbitMQ.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher подключается к брокеру и объявляет exchange.
func NewAMQPPublisher(url, exchange string, retries int, delay time.Duration) (*AMQPPublisher, error) {
	const op = "events.NewAMQPPublisher"
	conn, err := rabbitmq.Connect(url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, exchange, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish публикует payload. Канал AMQP не используется конкурентно.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	const op = "events.AMQPPublisher.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, routingKey, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}

// LogPublisher пишет события в лог, когда брокер не настроен.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher создаёт LogPublisher.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish записывает событие в лог на уровне debug.
func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.log.Debug("domain event", slog.String("routing_key", routingKey), slog.Any("payload", payload))
	return nil
}
