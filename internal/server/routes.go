package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luxeleads/internal/analytics"
	"luxeleads/internal/handlers/api"
	"luxeleads/internal/leads"
	"luxeleads/internal/middleware"
	"luxeleads/internal/store"
)

// Deps are the services the routes are served from.
type Deps struct {
	Leads    *leads.Service
	Store    store.Client
	Health   api.Pinger
	Observer analytics.Observer
	Streams  *api.Streams
	Logger   *slog.Logger
}

// RegisterRoutes registers all application routes. ctx bounds analytics streams.
func (s *Server) RegisterRoutes(ctx context.Context, d Deps) {
	if d.Streams == nil {
		d.Streams = api.NewStreams()
	}

	// Initialize middleware
	adminMiddleware := middleware.NewAdminMiddleware(s.Cfg)

	// Initialize handlers
	leadHandler := api.NewLeadHandler(d.Leads)
	analyticsHandler := api.NewAnalyticsHandler(ctx, d.Store, s.Cfg, d.Streams, d.Observer, d.Logger)
	healthHandler := api.NewHealthHandler(d.Health, s.Cfg.StoreDriver)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public lead capture
	public := s.App.Group("/api")
	public.Get("/interests", leadHandler.Interests)
	public.Post("/leads", s.captureLimiter(), leadHandler.Capture)

	// Admin routes
	admin := s.App.Group("/api/admin", adminMiddleware.RequireAdmin)
	admin.Get("/leads", leadHandler.List)
	admin.Get("/leads/:id", leadHandler.Get)
	admin.Put("/leads/:id/status", leadHandler.UpdateStatus)
	admin.Get("/analytics", analyticsHandler.Get)
	admin.Get("/analytics/stream", analyticsHandler.Stream)
	admin.Post("/analytics/streams/:id/refresh", analyticsHandler.RefreshStream)
}
