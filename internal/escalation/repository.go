package escalation

import (
	"context"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

// Repository is the persistence the engine needs for trips and incidents.
type Repository interface {
	CreateTrip(ctx context.Context, t *domain.Trip) error
	GetTrip(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error)
	ListTripsByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, error)
	ListActiveTrips(ctx context.Context) ([]*domain.Trip, error)

	CreateIncident(ctx context.Context, inc *domain.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	UpdateIncident(ctx context.Context, id uuid.UUID, patch domain.IncidentPatch) (*domain.Incident, error)
	OpenIncidentForTrip(ctx context.Context, tripID uuid.UUID) (*domain.Incident, error)
	ListIncidentsByOwner(ctx context.Context, ownerID string) ([]*domain.Incident, error)
}

type Notifier interface {
	Broadcast(ctx context.Context, inc *domain.Incident) (domain.BroadcastReport, error)
}

// Publisher is told about every trip and incident change.
type Publisher interface {
	PublishTrip(t *domain.Trip)
	PublishIncident(inc *domain.Incident)
}

type nopPublisher struct{}

func (nopPublisher) PublishTrip(*domain.Trip)         {}
func (nopPublisher) PublishIncident(*domain.Incident) {}
