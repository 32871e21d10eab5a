package models

import (
	"time"

	"github.com/google/uuid"
)

// LeadScore is a named quality tier that can be attached to a lead.
type LeadScore struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
