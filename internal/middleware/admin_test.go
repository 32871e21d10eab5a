package middleware

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"luxeleads/internal/config"
)

func newTestApp(cfg *config.Config) *fiber.App {
	m := NewAdminMiddleware(cfg)
	app := fiber.New()
	app.Get("/admin", m.RequireAdmin, func(c fiber.Ctx) error {
		return c.SendString(Actor(c))
	})
	return app
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		auth       string
		actor      string
		wantStatus int
		wantBody   string
	}{
		{"open without key", "", "", "", http.StatusOK, DefaultActor},
		{"open uses actor header", "", "", "maria", http.StatusOK, "maria"},
		{"missing token", "s3cret", "", "", http.StatusUnauthorized, ""},
		{"wrong token", "s3cret", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "s3cret", "Basic s3cret", "", http.StatusUnauthorized, ""},
		{"valid token", "s3cret", "Bearer s3cret", "", http.StatusOK, DefaultActor},
		{"valid token with actor", "s3cret", "Bearer s3cret", "  joao ", http.StatusOK, "joao"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&config.Config{AdminAPIKey: tt.apiKey, ActorHeader: "X-Actor-ID"})

			req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.actor != "" {
				req.Header.Set("X-Actor-ID", tt.actor)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

func TestActorDefaultsWithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error { return c.SendString(Actor(c)) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != DefaultActor {
		t.Errorf("Actor() = %q, want %q", body, DefaultActor)
	}
}
