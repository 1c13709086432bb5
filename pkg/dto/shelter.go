package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

type CreateShelterRequest struct {
	Name         string `json:"name" binding:"required"`
	District     string `json:"district,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

type ShelterResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	District     string    `json:"district,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	CreatedAt    string    `json:"created_at"`
}

func NewShelterResponse(s *models.Shelter) ShelterResponse {
	return ShelterResponse{
		ID:           s.ID,
		Name:         s.Name,
		District:     s.District,
		ContactPhone: s.ContactPhone,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}
