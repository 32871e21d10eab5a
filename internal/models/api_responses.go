package models

import "github.com/google/uuid"

// LeadCaptureResponse is returned after a lead is stored.
type LeadCaptureResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// StatusUpdateResponse is returned after a lead status is written.
type StatusUpdateResponse struct {
	LeadID  uuid.UUID `json:"lead_id"`
	Status  string    `json:"status"`
	Created bool      `json:"created"` // true when no status record existed before
}

// StreamOpenedEvent is the first event sent on an analytics stream.
type StreamOpenedEvent struct {
	StreamID uuid.UUID `json:"stream_id"`
}
