package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchMethod string

const (
	MatchMethodManual     MatchMethod = "MANUAL"
	MatchMethodAutomatic  MatchMethod = "AUTOMATIC"
	MatchMethodPhotoMatch MatchMethod = "PHOTO_MATCH"
)

// Match is persisted exactly once per confirmed (person, report) pairing.
// Immutable after creation except for the notification flags.
type Match struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	ReportID         uuid.UUID   `json:"report_id" db:"report_id"`
	PersonID         uuid.UUID   `json:"person_id" db:"person_id"`
	Score            float64     `json:"score" db:"score"`
	Method           MatchMethod `json:"method" db:"method"`
	ConfirmedBy      string      `json:"confirmed_by,omitempty" db:"confirmed_by"`
	ConfirmedAt      time.Time   `json:"confirmed_at" db:"confirmed_at"`
	NotificationSent bool        `json:"notification_sent" db:"notification_sent"`
	NotifiedAt       *time.Time  `json:"notified_at,omitempty" db:"notified_at"`
}

// Candidate is a scored, not-yet-confirmed pairing between a registered
// person and an open report. Produced fresh on every registration, never
// stored as-is.
type Candidate struct {
	ReportID     uuid.UUID `json:"report_id"`
	FullName     string    `json:"full_name"`
	Score        float64   `json:"score"`
	Reasons      []string  `json:"reasons"`
	PosterCode   string    `json:"poster_code"`
	ReporterName string    `json:"reporter_name"`

	// Carried for notification dispatch, never serialized to clients.
	ReporterPhone string `json:"-"`
	Locale        string `json:"-"`
}
