package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/pkg/dto"
)

// MatchStore is the slice of the store the confirmation endpoints touch.
type MatchStore interface {
	ConfirmMatch(ctx context.Context, personID, reportID uuid.UUID, score float64, method models.MatchMethod, confirmedBy string) (*models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.MissingPersonReport, error)
	GetShelter(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
}

// PersonStore is the slice of the store the registration endpoints touch.
type PersonStore interface {
	CreatePerson(ctx context.Context, p *models.Person) error
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context, shelterID *uuid.UUID) ([]models.Person, error)
	SetPersonPhoto(ctx context.Context, id uuid.UUID, photoKey string) error
	GetShelter(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
}

// TaskPublisher enqueues notification tasks for the notifier worker.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task models.NotificationTask) error
}

// EventBroadcaster pushes match activity to connected staff clients.
type EventBroadcaster interface {
	BroadcastEvent(event *dto.WSEvent)
}
