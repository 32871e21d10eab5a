package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"luxeleads/internal/leads"
	"luxeleads/internal/metrics"
	"luxeleads/internal/middleware"
	"luxeleads/internal/models"
	"luxeleads/internal/validation"
)

const maxListLimit = 500

// LeadHandler handles lead capture and the admin lead pipeline via JSON API.
type LeadHandler struct {
	svc *leads.Service
}

// NewLeadHandler creates a new API lead handler.
func NewLeadHandler(svc *leads.Service) *LeadHandler {
	return &LeadHandler{svc: svc}
}

// Interests returns the interests offered on the capture form.
func (h *LeadHandler) Interests(c fiber.Ctx) error {
	return jsonSuccess(c, h.svc.Catalog().Interests)
}

// Capture stores a lead submitted through the public contact form.
func (h *LeadHandler) Capture(c fiber.Ctx) error {
	var form validation.LeadForm
	if err := json.Unmarshal(c.Body(), &form); err != nil {
		metrics.RecordCapture(metrics.CaptureInvalid)
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lead, err := h.svc.Capture(c.Context(), form)
	if err != nil {
		var verr *leads.ValidationError
		if errors.As(err, &verr) {
			metrics.RecordCapture(metrics.CaptureInvalid)
			return jsonInvalid(c, verr.Fields)
		}
		metrics.RecordCapture(metrics.CaptureFailed)
		return jsonError(c, fiber.StatusInternalServerError, "failed to save lead")
	}

	metrics.RecordCapture(metrics.CaptureAccepted)
	return jsonCreated(c, models.LeadCaptureResponse{
		ID:      lead.ID,
		Message: "Thank you! We will be in touch shortly.",
	})
}

// List returns leads for the admin table, filtered by ?status= and ?q=.
func (h *LeadHandler) List(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", maxListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := h.svc.List(c.Context(), leads.ListFilter{
		Status: c.Query("status", leads.FilterAll),
		Query:  c.Query("q", ""),
		Limit:  limit,
	})
	if err != nil {
		if errors.Is(err, leads.ErrInvalidStatus) {
			return jsonError(c, fiber.StatusBadRequest, "invalid status filter")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch leads")
	}

	return jsonSuccess(c, rows)
}

// Get returns a single lead by ID.
func (h *LeadHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid lead id")
	}

	lead, err := h.svc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return jsonError(c, fiber.StatusNotFound, "lead not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch lead")
	}

	return jsonSuccess(c, lead)
}

// UpdateStatus moves a lead to another pipeline stage.
func (h *LeadHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid lead id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.svc.UpdateStatus(c.Context(), id, body.Status, middleware.Actor(c))
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrInvalidStatus):
			return jsonError(c, fiber.StatusBadRequest, "status must be one of new, contacted, converted, lost")
		case errors.Is(err, leads.ErrLeadNotFound):
			return jsonError(c, fiber.StatusNotFound, "lead not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update status")
	}

	return jsonSuccess(c, models.StatusUpdateResponse{
		LeadID:  id,
		Status:  normalizedStatus(body.Status),
		Created: created,
	})
}

func normalizedStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
