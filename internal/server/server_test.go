package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"luxeleads/internal/config"
	"luxeleads/internal/leads"
	"luxeleads/internal/store"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	mem := store.NewMemory()
	svc := leads.NewService(mem, config.DefaultCatalog(), nil, nil)
	if err := svc.SeedScoreTiers(context.Background()); err != nil {
		t.Fatalf("SeedScoreTiers() error = %v", err)
	}

	srv := New(cfg)
	srv.RegisterRoutes(context.Background(), Deps{Leads: svc, Store: mem})
	return srv
}

func testConfig() *config.Config {
	return &config.Config{
		Env:               "development",
		BaseURL:           "http://localhost:3000",
		StoreDriver:       "memory",
		ActorHeader:       "X-Actor-ID",
		CaptureRateLimit:  2,
		AnalyticsTimezone: "UTC",
		TrendDateLayout:   "1/2/2006",
		TrendWindowDays:   30,
		SiteTitle:         "Luxe Jewelry",
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["store"] != "memory" {
		t.Errorf("store = %q, want memory", body.Data["store"])
	}
}

func TestCaptureRateLimit(t *testing.T) {
	srv := newTestServer(t, testConfig())

	post := func(email string) int {
		body := `{"name":"Ana Lima","email":"` + email + `","phone":"+1 555 010 0200","interest":"Rings"}`
		req, _ := http.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := srv.App.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return resp.StatusCode
	}

	for i, email := range []string{"a@example.com", "b@example.com"} {
		if got := post(email); got != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, got)
		}
	}
	if got := post("c@example.com"); got != http.StatusTooManyRequests {
		t.Errorf("expected 429 after limit, got %d", got)
	}
}

func TestAdminRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.AdminAPIKey = "s3cret"
	srv := newTestServer(t, cfg)

	req, _ := http.NewRequest(http.MethodGet, "/api/admin/leads", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, "/api/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Errorf("expected 200 with key, got %d: %s", resp.StatusCode, body)
	}
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
