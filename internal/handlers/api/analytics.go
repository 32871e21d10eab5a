package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"luxeleads/internal/analytics"
	"luxeleads/internal/config"
	"luxeleads/internal/metrics"
	"luxeleads/internal/models"
	"luxeleads/internal/store"
)

const defaultKeepAlive = 25 * time.Second

// Streams tracks the sync controllers behind open analytics streams.
type Streams struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*analytics.Controller
}

// NewStreams creates an empty stream registry.
func NewStreams() *Streams {
	return &Streams{byID: make(map[uuid.UUID]*analytics.Controller)}
}

func (s *Streams) add(id uuid.UUID, ctrl *analytics.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = ctrl
}

func (s *Streams) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *Streams) get(id uuid.UUID) (*analytics.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.byID[id]
	return ctrl, ok
}

// Len returns the number of open streams.
func (s *Streams) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// AnalyticsHandler serves the lead dashboard summary, either once or as a
// server-sent event stream that follows store changes.
type AnalyticsHandler struct {
	ctx       context.Context
	client    store.Client
	cfg       *config.Config
	streams   *Streams
	observer  analytics.Observer
	logger    *slog.Logger
	keepAlive time.Duration
}

// NewAnalyticsHandler creates a new analytics handler. ctx bounds every fetch
// started by a stream and ends open streams when cancelled.
func NewAnalyticsHandler(ctx context.Context, client store.Client, cfg *config.Config, streams *Streams, observer analytics.Observer, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		ctx:       ctx,
		client:    client,
		cfg:       cfg,
		streams:   streams,
		observer:  observer,
		logger:    logger,
		keepAlive: defaultKeepAlive,
	}
}

// options resolves the trend location from ?tz=, falling back to the configured zone.
func (h *AnalyticsHandler) options(c fiber.Ctx) (analytics.Options, error) {
	loc, err := h.cfg.Location()
	if tz := c.Query("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
	}
	if err != nil {
		return analytics.Options{}, err
	}
	return analytics.Options{Location: loc, DateLayout: h.cfg.TrendDateLayout}, nil
}

// Get computes the summary once.
func (h *AnalyticsHandler) Get(c fiber.Ctx) error {
	opts, err := h.options(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid timezone")
	}

	in, err := analytics.NewFetcher(h.client, h.cfg.TrendWindowDays).Fetch(c.Context())
	if err != nil {
		h.logger.Error("failed to load lead analytics", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to load lead analytics")
	}

	return jsonSuccess(c, analytics.Aggregate(in, opts))
}

// Stream opens a server-sent event stream. The first event names the stream; every
// following event carries a controller snapshot.
func (h *AnalyticsHandler) Stream(c fiber.Ctx) error {
	opts, err := h.options(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid timezone")
	}

	ctrl := analytics.NewController(h.client, analytics.Config{
		Options:    opts,
		WindowDays: h.cfg.TrendWindowDays,
		Observer:   h.observer,
		Logger:     h.logger,
	})
	if err := ctrl.Start(h.ctx); err != nil {
		h.logger.Error("failed to start analytics stream", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to subscribe to lead changes")
	}
	updates, _ := ctrl.Watch()

	id := uuid.New()
	h.streams.add(id, ctrl)
	metrics.StreamOpened()
	h.logger.Info("analytics stream opened", "stream_id", id)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.streams.remove(id)
			ctrl.Stop()
			metrics.StreamClosed()
			h.logger.Info("analytics stream closed", "stream_id", id)
		}()
		if err := writeStream(h.ctx, w, id, updates, h.keepAlive); err != nil {
			h.logger.Debug("analytics stream write failed", "stream_id", id, "error", err)
		}
	})
}

// RefreshStream forces a new cycle on an open stream.
func (h *AnalyticsHandler) RefreshStream(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid stream id")
	}

	ctrl, ok := h.streams.get(id)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "stream not found")
	}
	ctrl.Refresh()

	c.Status(fiber.StatusAccepted)
	return jsonSuccess(c, fiber.Map{
		"stream_id": id,
		"state":     ctrl.View().State,
	})
}

// writeStream copies snapshots to w until updates is closed, ctx is done or a write
// fails. Idle periods are filled with comment lines so proxies keep the connection.
func writeStream(ctx context.Context, w *bufio.Writer, id uuid.UUID, updates <-chan analytics.Snapshot, keepAlive time.Duration) error {
	if err := writeEvent(w, "open", models.StreamOpenedEvent{StreamID: id}); err != nil {
		return err
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEvent(w, "snapshot", snap); err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w *bufio.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}
