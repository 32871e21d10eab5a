package models

import "time"

// Lead event types
const (
	EventLeadCaptured      = "lead.captured"
	EventLeadStatusChanged = "lead.status_changed"
)

// LeadEvent is published whenever a lead is captured or its status changes.
type LeadEvent struct {
	Type       string    `json:"type"`
	Lead       Lead      `json:"lead"`
	Status     string    `json:"status,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
