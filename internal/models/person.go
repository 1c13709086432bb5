package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Person is someone registered at a shelter by staff.
// MissingReportID and MatchedAt are set only when a match is confirmed.
type Person struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ShelterID       uuid.UUID  `json:"shelter_id" db:"shelter_id"`
	FullName        string     `json:"full_name" db:"full_name"`
	Age             int        `json:"age" db:"age"`
	Gender          Gender     `json:"gender" db:"gender"`
	NationalID      string     `json:"national_id,omitempty" db:"national_id"`
	PhotoKey        string     `json:"photo_key,omitempty" db:"photo_key"`
	MissingReportID *uuid.UUID `json:"missing_report_id,omitempty" db:"missing_report_id"`
	MatchedAt       *time.Time `json:"matched_at,omitempty" db:"matched_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

type Shelter struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	District     string    `json:"district" db:"district"`
	ContactPhone string    `json:"contact_phone,omitempty" db:"contact_phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
