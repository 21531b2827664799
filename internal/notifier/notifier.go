// Package notifier публикует доменные события в RabbitMQ.
//
// Публикация выполняется по принципу fire-and-forget: сбой брокера
// логируется, но никогда не прерывает операцию, породившую событие.
// Письма отправляет отдельный воркер, читающий очереди событий.
package notifier

import (
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms-access/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
)

// Notifier отправляет события в обменник notifications.
type Notifier struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// New создает новый экземпляр Notifier.
func New(ch *amqp.Channel, log *slog.Logger) *Notifier {
	return &Notifier{ch: ch, log: log}
}

// Publish публикует событие с заданным ключом маршрутизации.
// Ошибки публикации не возвращаются вызывающему.
func (n *Notifier) Publish(routingKey string, event any) {
	if err := rabbitmq.PublishMessage(n.ch, rabbitmq.Exchange, routingKey, event); err != nil {
		n.log.Error("failed to publish event",
			slog.String("routing_key", routingKey), sl.Err(err))
	}
}

// Noop реализует тот же контракт без брокера, для окружений,
// где RabbitMQ не развернут.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(string, any) {}
