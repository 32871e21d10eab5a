// Package middleware holds the request guards shared by the admin API.
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"

	"luxeleads/internal/config"
)

// DefaultActor is recorded when the proxy did not name the acting admin.
const DefaultActor = "admin"

const actorKey = "actor"

// AdminMiddleware guards the admin API with a static bearer token and records the
// acting admin from a header set by the trusted proxy in front of the admin UI.
type AdminMiddleware struct {
	apiKey      string
	actorHeader string
}

// NewAdminMiddleware creates a new admin middleware instance.
func NewAdminMiddleware(cfg *config.Config) *AdminMiddleware {
	header := cfg.ActorHeader
	if header == "" {
		header = "X-Actor-ID"
	}
	return &AdminMiddleware{apiKey: cfg.AdminAPIKey, actorHeader: header}
}

// RequireAdmin rejects requests without the configured bearer token. With no token
// configured every request is let through.
func (m *AdminMiddleware) RequireAdmin(c fiber.Ctx) error {
	if m.apiKey != "" {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(m.apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error",
				"error":  "unauthorized",
			})
		}
	}

	actor := strings.TrimSpace(c.Get(m.actorHeader))
	if actor == "" {
		actor = DefaultActor
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// Actor returns the acting admin stored by RequireAdmin.
func Actor(c fiber.Ctx) string {
	if actor, ok := c.Locals(actorKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
