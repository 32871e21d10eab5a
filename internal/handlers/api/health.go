package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and store reachability.
type HealthHandler struct {
	store  Pinger
	driver string
}

// NewHealthHandler creates a new health handler. A nil pinger is always healthy.
func NewHealthHandler(pinger Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: pinger, driver: driver}
}

// Check pings the store.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			return jsonError(c, fiber.StatusServiceUnavailable, "store unavailable")
		}
	}
	return jsonSuccess(c, fiber.Map{"store": h.driver})
}
