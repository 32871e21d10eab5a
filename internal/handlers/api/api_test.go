package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"luxeleads/internal/config"
	"luxeleads/internal/leads"
	"luxeleads/internal/middleware"
	"luxeleads/internal/store"
)

type envelope struct {
	Status string            `json:"status"`
	Data   json.RawMessage   `json:"data"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type testEnv struct {
	app     *fiber.App
	mem     *store.Memory
	svc     *leads.Service
	streams *Streams
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		ActorHeader:       "X-Actor-ID",
		AnalyticsTimezone: "UTC",
		TrendDateLayout:   "1/2/2006",
		TrendWindowDays:   30,
	}
	mem := store.NewMemory()
	svc := leads.NewService(mem, config.DefaultCatalog(), nil, nil)
	require.NoError(t, svc.SeedScoreTiers(context.Background()))

	streams := NewStreams()
	leadHandler := NewLeadHandler(svc)
	analyticsHandler := NewAnalyticsHandler(context.Background(), mem, cfg, streams, nil, nil)
	admin := middleware.NewAdminMiddleware(cfg)

	app := fiber.New()
	app.Get("/api/interests", leadHandler.Interests)
	app.Post("/api/leads", leadHandler.Capture)
	app.Get("/api/admin/leads", admin.RequireAdmin, leadHandler.List)
	app.Get("/api/admin/leads/:id", admin.RequireAdmin, leadHandler.Get)
	app.Put("/api/admin/leads/:id/status", admin.RequireAdmin, leadHandler.UpdateStatus)
	app.Get("/api/admin/analytics", admin.RequireAdmin, analyticsHandler.Get)
	app.Post("/api/admin/analytics/streams/:id/refresh", admin.RequireAdmin, analyticsHandler.RefreshStream)

	return &testEnv{app: app, mem: mem, svc: svc, streams: streams}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (int, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp.StatusCode, env
}

const validLead = `{"name":"Ana Lima","email":"ana@example.com","phone":"+1 555 010 0200","interest":"Rings","notes":"Size 6"}`
