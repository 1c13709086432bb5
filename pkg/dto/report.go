package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

type CreateReportRequest struct {
	FullName            string     `json:"full_name" binding:"required"`
	Age                 int        `json:"age" binding:"min=0,max=120"`
	Gender              string     `json:"gender" binding:"required"`
	NationalID          string     `json:"national_id,omitempty"`
	LastSeenLocation    string     `json:"last_seen_location,omitempty"`
	LastSeenDistrict    string     `json:"last_seen_district,omitempty"`
	LastSeenDate        *time.Time `json:"last_seen_date,omitempty"`
	ClothingDescription string     `json:"clothing_description,omitempty"`
	ReporterName        string     `json:"reporter_name" binding:"required"`
	ReporterPhone       string     `json:"reporter_phone" binding:"required"`
	AlternatePhone      string     `json:"alternate_phone,omitempty"`
	Locale              string     `json:"locale,omitempty"`
}

type ReportResponse struct {
	ID                  uuid.UUID `json:"id"`
	FullName            string    `json:"full_name"`
	Age                 int       `json:"age"`
	Gender              string    `json:"gender"`
	NationalID          string    `json:"national_id,omitempty"`
	PhotoURL            string    `json:"photo_url,omitempty"`
	LastSeenLocation    string    `json:"last_seen_location,omitempty"`
	LastSeenDistrict    string    `json:"last_seen_district,omitempty"`
	LastSeenDate        string    `json:"last_seen_date,omitempty"`
	ClothingDescription string    `json:"clothing_description,omitempty"`
	ReporterName        string    `json:"reporter_name"`
	ReporterPhone       string    `json:"reporter_phone,omitempty"`
	PosterCode          string    `json:"poster_code"`
	Locale              string    `json:"locale"`
	Status              string    `json:"status"`
	CreatedAt           string    `json:"created_at"`
}

// NewReportResponse renders a report for staff views. Pass public=true for
// the poster-code view, which hides the reporter's phone number.
func NewReportResponse(r *models.MissingPersonReport, public bool) ReportResponse {
	resp := ReportResponse{
		ID:                  r.ID,
		FullName:            r.FullName,
		Age:                 r.Age,
		Gender:              string(r.Gender),
		NationalID:          r.NationalID,
		LastSeenLocation:    r.LastSeenLocation,
		LastSeenDistrict:    r.LastSeenDistrict,
		ClothingDescription: r.ClothingDescription,
		ReporterName:        r.ReporterName,
		PosterCode:          r.PosterCode,
		Locale:              r.Locale,
		Status:              string(r.Status),
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
	}
	if public {
		resp.NationalID = ""
	} else {
		resp.ReporterPhone = r.ReporterPhone
	}
	if r.PhotoKey != "" {
		resp.PhotoURL = "/v1/reports/" + r.ID.String() + "/photo"
	}
	if r.LastSeenDate != nil {
		resp.LastSeenDate = r.LastSeenDate.Format("2006-01-02")
	}
	return resp
}
