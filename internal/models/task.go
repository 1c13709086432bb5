package models

import "github.com/google/uuid"

const (
	TaskKindCandidates = "candidates"
	TaskKindConfirmed  = "confirmed"
)

// NotificationTask is the message published to NATS for the notifier worker.
// It carries everything needed to compose the SMS so the worker does not
// have to re-query the registration path.
type NotificationTask struct {
	Kind         string           `json:"kind"`
	PersonID     uuid.UUID        `json:"person_id"`
	PersonName   string           `json:"person_name"`
	ShelterName  string           `json:"shelter_name"`
	ShelterPhone string           `json:"shelter_phone,omitempty"`
	MatchID      *uuid.UUID       `json:"match_id,omitempty"`
	Alerts       []CandidateAlert `json:"alerts"`
}

// CandidateAlert identifies one reporter to notify about one candidate.
type CandidateAlert struct {
	ReportID      uuid.UUID `json:"report_id"`
	ReporterPhone string    `json:"reporter_phone"`
	PosterCode    string    `json:"poster_code"`
	Locale        string    `json:"locale"`
	Score         float64   `json:"score"`
}

// DeliveryEvent is published by the notifier worker after each SMS attempt,
// consumed by the API to broadcast over WebSocket.
type DeliveryEvent struct {
	Kind      string    `json:"kind"` // sms_delivered | sms_failed
	PersonID  uuid.UUID `json:"person_id"`
	ReportID  uuid.UUID `json:"report_id"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}
