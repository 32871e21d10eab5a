// Package leads implements lead capture and the admin lead pipeline on top of the
// record store.
package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"luxeleads/internal/config"
	"luxeleads/internal/models"
	"luxeleads/internal/queue"
	"luxeleads/internal/store"
	"luxeleads/internal/validation"
)

// CaptureActor is recorded as the author of the initial status of captured leads.
const CaptureActor = "lead-form"

// Status filter values beyond the statuses themselves.
const (
	FilterAll  = "all"
	FilterNone = "none"
)

// Service manages leads and their statuses.
type Service struct {
	records store.Records
	catalog *config.Catalog
	events  queue.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a lead service. A nil publisher drops events.
func NewService(records store.Records, catalog *config.Catalog, events queue.Publisher, logger *slog.Logger) *Service {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		records: records,
		catalog: catalog,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// Catalog returns the catalog the service validates against.
func (s *Service) Catalog() *config.Catalog {
	return s.catalog
}

// Capture validates form, stores the lead with an initial "new" status and publishes
// a lead.captured event. Invalid forms return a *ValidationError and write nothing. A
// failure to write the initial status is logged and the lead is kept without one.
func (s *Service) Capture(ctx context.Context, form validation.LeadForm) (*models.Lead, error) {
	form.Normalize()
	if errs := validation.ValidateLeadForm(form, s.catalog); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	rec := store.Record{
		"name":     form.Name,
		"email":    form.Email,
		"phone":    form.Phone,
		"interest": form.Interest,
	}
	scoreID, err := s.scoreIDFor(ctx, form.Interest)
	if err != nil {
		return nil, err
	}
	if scoreID != "" {
		rec["score_id"] = scoreID
	}

	stored, err := s.records.Insert(ctx, store.Leads, rec)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	lead := leadFromRecord(stored)

	status := models.StatusNew
	if _, err := s.records.Insert(ctx, store.LeadStatuses, store.Record{
		"lead_id":    lead.ID,
		"status":     models.StatusNew,
		"updated_by": CaptureActor,
		"updated_at": s.now(),
	}); err != nil {
		// The lead is stored; it stays statusless until an admin sets one.
		s.logger.Error("failed to insert initial lead status", "lead_id", lead.ID, "error", err)
		status = ""
	}

	s.publish(ctx, models.LeadEvent{
		Type:       models.EventLeadCaptured,
		Lead:       lead,
		Status:     status,
		Notes:      form.Notes,
		OccurredAt: s.now().UTC(),
	})

	return &lead, nil
}

// scoreIDFor returns the stored id of the tier the catalog assigns to interest, or ""
// when no tier applies or the tier has not been seeded.
func (s *Service) scoreIDFor(ctx context.Context, interest string) (string, error) {
	tier := s.catalog.TierForInterest(interest)
	if tier == nil {
		return "", nil
	}
	rows, err := s.records.Query(ctx, store.Query{
		Collection: store.LeadScores,
		Columns:    []string{"id"},
		Filters:    []store.Filter{store.Eq("name", tier.Name)},
		Limit:      1,
	})
	if err != nil {
		return "", fmt.Errorf("lookup score tier: %w", err)
	}
	if len(rows) == 0 {
		s.logger.Warn("score tier not seeded", "tier", tier.Name)
		return "", nil
	}
	return rows[0].String("id"), nil
}

// ListFilter narrows the admin lead list.
type ListFilter struct {
	Status string // "", FilterAll, FilterNone or a status
	Query  string // case-insensitive substring of name or email
	Limit  int
}

// List returns leads newest first, joined with their status and score tier.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.LeadRow, error) {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status != "" && status != FilterAll && status != FilterNone && !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	q := store.Query{
		Collection: store.Leads,
		OrderBy:    []store.Order{{Column: "created_at", Desc: true}},
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := "%" + term + "%"
		q.Filters = append(q.Filters, store.Or(store.ILike("name", pattern), store.ILike("email", pattern)))
	}

	leadRecs, err := s.records.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	if len(leadRecs) == 0 {
		return []models.LeadRow{}, nil
	}

	ids := make([]any, len(leadRecs))
	for i, r := range leadRecs {
		ids[i] = r.String("id")
	}
	statusRecs, err := s.records.Query(ctx, store.Query{
		Collection: store.LeadStatuses,
		Filters:    []store.Filter{store.In("lead_id", ids...)},
	})
	if err != nil {
		return nil, fmt.Errorf("query lead statuses: %w", err)
	}
	scoreRecs, err := s.records.Query(ctx, store.Query{Collection: store.LeadScores})
	if err != nil {
		return nil, fmt.Errorf("query lead scores: %w", err)
	}

	statuses := make(map[uuid.UUID]models.LeadStatus, len(statusRecs))
	for _, r := range statusRecs {
		st := statusFromRecord(r)
		statuses[st.LeadID] = st
	}
	scores := make(map[uuid.UUID]models.LeadScore, len(scoreRecs))
	for _, r := range scoreRecs {
		sc := scoreFromRecord(r)
		scores[sc.ID] = sc
	}

	rows := make([]models.LeadRow, 0, len(leadRecs))
	for _, r := range leadRecs {
		lead := leadFromRecord(r)

		var st *models.LeadStatus
		if v, ok := statuses[lead.ID]; ok {
			st = &v
		}
		var sc *models.LeadScore
		if lead.ScoreID != nil {
			if v, ok := scores[*lead.ScoreID]; ok {
				sc = &v
			}
		}

		row := rowFor(lead, st, sc)
		if !matchesStatus(row, status) {
			continue
		}
		rows = append(rows, row)
		if f.Limit > 0 && len(rows) == f.Limit {
			break
		}
	}
	return rows, nil
}

func matchesStatus(row models.LeadRow, status string) bool {
	switch status {
	case "", FilterAll:
		return true
	case FilterNone:
		return row.Status == nil
	}
	return row.Status != nil && *row.Status == status
}

// Get returns one lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	rows, err := s.records.Query(ctx, store.Query{
		Collection: store.Leads,
		Filters:    []store.Filter{store.Eq("id", id)},
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("query lead: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrLeadNotFound
	}
	lead := leadFromRecord(rows[0])
	return &lead, nil
}

// UpdateStatus sets the status of a lead, overwriting any existing status record.
// created reports whether a new record had to be inserted.
func (s *Service) UpdateStatus(ctx context.Context, leadID uuid.UUID, status, actor string) (created bool, err error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidStatus(status) {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return false, err
	}

	now := s.now()
	created, err = s.writeStatus(ctx, leadID, status, actor, now)
	if err != nil {
		return false, err
	}

	s.publish(ctx, models.LeadEvent{
		Type:       models.EventLeadStatusChanged,
		Lead:       *lead,
		Status:     status,
		Actor:      actor,
		OccurredAt: now.UTC(),
	})
	return created, nil
}

// writeStatus updates in place, inserting when the lead has no status yet. A
// concurrent insert loses on the unique lead_id and falls back to the update.
func (s *Service) writeStatus(ctx context.Context, leadID uuid.UUID, status, actor string, now time.Time) (bool, error) {
	byLead := []store.Filter{store.Eq("lead_id", leadID)}
	patch := store.Record{"status": status, "updated_by": actor, "updated_at": now}

	n, err := s.records.Update(ctx, store.LeadStatuses, byLead, patch)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	rec := patch.Clone()
	rec["lead_id"] = leadID
	_, err = s.records.Insert(ctx, store.LeadStatuses, rec)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return false, fmt.Errorf("insert status: %w", err)
	}
	if _, err := s.records.Update(ctx, store.LeadStatuses, byLead, patch); err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return false, nil
}

func (s *Service) publish(ctx context.Context, ev models.LeadEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish lead event", "type", ev.Type, "lead_id", ev.Lead.ID, "error", err)
	}
}
