package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

type RegisterPersonRequest struct {
	ShelterID  uuid.UUID `json:"shelter_id" binding:"required"`
	FullName   string    `json:"full_name" binding:"required"`
	Age        int       `json:"age" binding:"min=0,max=120"`
	Gender     string    `json:"gender" binding:"required"`
	NationalID string    `json:"national_id,omitempty"`
}

type BulkRegisterRequest struct {
	ShelterID uuid.UUID         `json:"shelter_id" binding:"required"`
	Persons   []BulkPersonEntry `json:"persons" binding:"required,min=1"`
}

type BulkPersonEntry struct {
	FullName   string `json:"full_name" binding:"required"`
	Age        int    `json:"age" binding:"min=0,max=120"`
	Gender     string `json:"gender" binding:"required"`
	NationalID string `json:"national_id,omitempty"`
}

type PersonResponse struct {
	ID              uuid.UUID  `json:"id"`
	ShelterID       uuid.UUID  `json:"shelter_id"`
	FullName        string     `json:"full_name"`
	Age             int        `json:"age"`
	Gender          string     `json:"gender"`
	NationalID      string     `json:"national_id,omitempty"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	MissingReportID *uuid.UUID `json:"missing_report_id,omitempty"`
	MatchedAt       string     `json:"matched_at,omitempty"`
	CreatedAt       string     `json:"created_at"`
}

type CandidateResponse struct {
	ReportID     uuid.UUID `json:"report_id"`
	FullName     string    `json:"full_name"`
	Score        float64   `json:"score"`
	Reasons      []string  `json:"reasons"`
	PosterCode   string    `json:"poster_code"`
	ReporterName string    `json:"reporter_name"`
}

type RegisterResponse struct {
	Person     PersonResponse      `json:"person"`
	Candidates []CandidateResponse `json:"candidates"`
}

type BulkItemResult struct {
	FullName   string              `json:"full_name"`
	Person     *PersonResponse     `json:"person,omitempty"`
	Candidates []CandidateResponse `json:"candidates,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func NewPersonResponse(p *models.Person) PersonResponse {
	resp := PersonResponse{
		ID:              p.ID,
		ShelterID:       p.ShelterID,
		FullName:        p.FullName,
		Age:             p.Age,
		Gender:          string(p.Gender),
		NationalID:      p.NationalID,
		MissingReportID: p.MissingReportID,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
	if p.PhotoKey != "" {
		resp.PhotoURL = "/v1/persons/" + p.ID.String() + "/photo"
	}
	if p.MatchedAt != nil {
		resp.MatchedAt = p.MatchedAt.Format(time.RFC3339)
	}
	return resp
}

func NewCandidateResponses(candidates []models.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateResponse{
			ReportID:     c.ReportID,
			FullName:     c.FullName,
			Score:        c.Score,
			Reasons:      c.Reasons,
			PosterCode:   c.PosterCode,
			ReporterName: c.ReporterName,
		})
	}
	return out
}
