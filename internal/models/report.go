package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportStatusMissing ReportStatus = "MISSING"
	ReportStatusFound   ReportStatus = "FOUND"
	ReportStatusClosed  ReportStatus = "CLOSED"
)

// MissingPersonReport is filed by a reporter looking for someone.
// Only reports with status MISSING are eligible as match candidates.
// The matching engine mutates nothing here except the status
// (MISSING -> FOUND on confirmed match).
type MissingPersonReport struct {
	ID                  uuid.UUID    `json:"id" db:"id"`
	FullName            string       `json:"full_name" db:"full_name"`
	Age                 int          `json:"age" db:"age"`
	Gender              Gender       `json:"gender" db:"gender"`
	NationalID          string       `json:"national_id,omitempty" db:"national_id"`
	PhotoKey            string       `json:"photo_key,omitempty" db:"photo_key"`
	LastSeenLocation    string       `json:"last_seen_location,omitempty" db:"last_seen_location"`
	LastSeenDistrict    string       `json:"last_seen_district,omitempty" db:"last_seen_district"`
	LastSeenDate        *time.Time   `json:"last_seen_date,omitempty" db:"last_seen_date"`
	ClothingDescription string       `json:"clothing_description,omitempty" db:"clothing_description"`
	ReporterName        string       `json:"reporter_name" db:"reporter_name"`
	ReporterPhone       string       `json:"reporter_phone" db:"reporter_phone"`
	AlternatePhone      string       `json:"alternate_phone,omitempty" db:"alternate_phone"`
	PosterCode          string       `json:"poster_code" db:"poster_code"`
	Locale              string       `json:"locale" db:"locale"`
	Status              ReportStatus `json:"status" db:"status"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}
