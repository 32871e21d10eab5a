// Package queue carries lead events from the request path to the notification
// handlers, over RabbitMQ when configured and in-process otherwise.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"luxeleads/internal/models"
)

const (
	ExchangeName = "ex.leads"
	QueueName    = "q.lead-notifications"
	DLXName      = "ex.leads.dlx"
	DLQName      = "q.lead-notifications.dlq"
	BindingKey   = "lead.*"
)

// Publisher publishes lead events.
type Publisher interface {
	Publish(ctx context.Context, ev models.LeadEvent) error
}

// Handler processes a lead event.
type Handler interface {
	HandleEvent(ctx context.Context, ev models.LeadEvent) error
}

// RabbitMQ holds the connection and channel used to publish lead events.
type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Dial connects to url and declares the lead event topology.
func Dial(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology declares a topic exchange routing lead.* events into a durable queue
// whose rejected messages go to a dead letter queue.
func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(DLQName, "", DLXName, false, nil); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	args := amqp.Table{"x-dead-letter-exchange": DLXName}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(QueueName, BindingKey, ExchangeName, false, nil)
}

// Publish sends ev as a persistent JSON message routed by its type.
func (r *RabbitMQ) Publish(ctx context.Context, ev models.LeadEvent) error {
	msg, err := newPublishing(ev)
	if err != nil {
		return err
	}
	if err := r.Ch.PublishWithContext(ctx, ExchangeName, ev.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close closes the channel and connection.
func (r *RabbitMQ) Close() error {
	if err := r.Ch.Close(); err != nil {
		r.Conn.Close()
		return err
	}
	return r.Conn.Close()
}

func newPublishing(ev models.LeadEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}, nil
}
