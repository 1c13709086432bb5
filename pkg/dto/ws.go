package dto

import "github.com/google/uuid"

// WSEvent is the envelope broadcast to staff WebSocket clients.
// Type is one of: candidates_found, match_confirmed, sms_delivered, sms_failed.
type WSEvent struct {
	Type      string      `json:"type"`
	ShelterID uuid.UUID   `json:"shelter_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
