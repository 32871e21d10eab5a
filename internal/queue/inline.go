package queue

import (
	"context"
	"log/slog"
	"sync"

	"luxeleads/internal/models"
)

// Inline publishes by running the handler on its own goroutine.
type Inline struct {
	handler Handler
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewInline creates an in-process publisher.
func NewInline(handler Handler, logger *slog.Logger) *Inline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inline{handler: handler, logger: logger}
}

// Publish schedules ev and returns immediately. The request context is detached so
// handling outlives the request.
func (i *Inline) Publish(ctx context.Context, ev models.LeadEvent) error {
	ctx = context.WithoutCancel(ctx)
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if err := i.handler.HandleEvent(ctx, ev); err != nil {
			i.logger.Error("lead event handler failed", "type", ev.Type, "lead_id", ev.Lead.ID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every published event has been handled.
func (i *Inline) Wait() {
	i.wg.Wait()
}
