package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead status constants
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Statuses lists every status in pipeline order.
var Statuses = []string{StatusNew, StatusContacted, StatusConverted, StatusLost}

// LeadStatus is the current pipeline stage of a lead. A lead has at most one.
type LeadStatus struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	Status    string    `json:"status"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidStatus reports whether s is one of the known statuses.
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
