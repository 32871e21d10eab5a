package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"luxeleads/internal/models"
)

// Worker consumes lead events and hands them to a Handler. Messages are acked on
// success and rejected without requeue otherwise, which dead-letters them.
type Worker struct {
	ch      *amqp.Channel
	handler Handler
	logger  *slog.Logger
}

// NewWorker creates a worker on ch.
func NewWorker(ch *amqp.Channel, handler Handler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{ch: ch, handler: handler, logger: logger}
}

// Start consumes QueueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.logger.Info("lead event worker started", "queue", QueueName)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("lead event worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var ev models.LeadEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		w.logger.Error("dropping malformed lead event", "error", err)
		d.Nack(false, false)
		return
	}

	if err := w.handler.HandleEvent(ctx, ev); err != nil {
		w.logger.Error("lead event handler failed", "type", ev.Type, "lead_id", ev.Lead.ID, "error", err)
		d.Nack(false, false)
		return
	}

	w.logger.Debug("lead event handled", "type", ev.Type, "lead_id", ev.Lead.ID)
	d.Ack(false)
}
