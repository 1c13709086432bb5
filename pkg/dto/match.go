package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

type ConfirmMatchRequest struct {
	PersonID    uuid.UUID `json:"person_id" binding:"required"`
	ReportID    uuid.UUID `json:"report_id" binding:"required"`
	Score       float64   `json:"score"`
	Method      string    `json:"method,omitempty"`
	ConfirmedBy string    `json:"confirmed_by,omitempty"`
}

type MatchResponse struct {
	ID               uuid.UUID `json:"id"`
	ReportID         uuid.UUID `json:"report_id"`
	PersonID         uuid.UUID `json:"person_id"`
	Score            float64   `json:"score"`
	Method           string    `json:"method"`
	ConfirmedBy      string    `json:"confirmed_by,omitempty"`
	ConfirmedAt      string    `json:"confirmed_at"`
	NotificationSent bool      `json:"notification_sent"`
}

func NewMatchResponse(m *models.Match) MatchResponse {
	return MatchResponse{
		ID:               m.ID,
		ReportID:         m.ReportID,
		PersonID:         m.PersonID,
		Score:            m.Score,
		Method:           string(m.Method),
		ConfirmedBy:      m.ConfirmedBy,
		ConfirmedAt:      m.ConfirmedAt.Format(time.RFC3339),
		NotificationSent: m.NotificationSent,
	}
}
