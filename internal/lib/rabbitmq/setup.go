package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Binding привязка очереди к exchange по ключу маршрутизации.
type Binding struct {
	QueueName  string
	RoutingKey string
}

// SetupChannel открывает канал, объявляет topic-exchange и, при наличии,
// очереди с привязками к нему.
func SetupChannel(conn *amqp.Connection, exchange string, bindings []Binding) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, b.QueueName, err)
		}
		if err := ch.QueueBind(b.QueueName, b.RoutingKey, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, b.QueueName, b.RoutingKey, err)
		}
	}

	return ch, nil
}
