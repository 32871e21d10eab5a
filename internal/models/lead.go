package models

import (
	"time"

	"github.com/google/uuid"
)

// Interest categories offered on the lead capture form.
const (
	InterestRings        = "Rings"
	InterestNecklaces    = "Necklaces"
	InterestEarrings     = "Earrings"
	InterestBracelets    = "Bracelets"
	InterestCustomDesign = "Custom Design"
	InterestInvestment   = "Investment"
	InterestOther        = "Other"
)

// DefaultInterests is the interest list used when no catalog file is configured.
var DefaultInterests = []string{
	InterestRings,
	InterestNecklaces,
	InterestEarrings,
	InterestBracelets,
	InterestCustomDesign,
	InterestInvestment,
	InterestOther,
}

// Lead represents a prospect captured through the contact form.
type Lead struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Interest  string     `json:"interest"`
	ScoreID   *uuid.UUID `json:"score_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// LeadRow is a lead joined with its optional status and score, as shown in the admin list.
type LeadRow struct {
	Lead
	Status          *string    `json:"status"` // nil when no status record exists
	StatusUpdatedAt *time.Time `json:"status_updated_at"`
	StatusUpdatedBy *string    `json:"status_updated_by"`
	Score           *LeadScore `json:"score"`
}
