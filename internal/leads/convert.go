package leads

import (
	"luxeleads/internal/models"
	"luxeleads/internal/store"
)

func leadFromRecord(r store.Record) models.Lead {
	lead := models.Lead{
		Name:      r.String("name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		Interest:  r.String("interest"),
		CreatedAt: r.Time("created_at"),
	}
	lead.ID, _ = r.UUID("id")
	if id, ok := r.UUID("score_id"); ok {
		lead.ScoreID = &id
	}
	return lead
}

func statusFromRecord(r store.Record) models.LeadStatus {
	s := models.LeadStatus{
		Status:    r.String("status"),
		UpdatedBy: r.String("updated_by"),
		UpdatedAt: r.Time("updated_at"),
	}
	s.ID, _ = r.UUID("id")
	s.LeadID, _ = r.UUID("lead_id")
	return s
}

func scoreFromRecord(r store.Record) models.LeadScore {
	s := models.LeadScore{
		Name:      r.String("name"),
		Score:     int(r.Int("score")),
		CreatedAt: r.Time("created_at"),
	}
	s.ID, _ = r.UUID("id")
	return s
}

// rowFor joins a lead with its optional status and score.
func rowFor(lead models.Lead, status *models.LeadStatus, score *models.LeadScore) models.LeadRow {
	row := models.LeadRow{Lead: lead, Score: score}
	if status != nil && status.Status != "" {
		s := status.Status
		by := status.UpdatedBy
		at := status.UpdatedAt
		row.Status = &s
		row.StatusUpdatedBy = &by
		if !at.IsZero() {
			row.StatusUpdatedAt = &at
		}
	}
	return row
}
