package memory

import (
	"context"
	"fmt"
	"sort"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
)

// CreateIncident rejects a second non-resolved incident for the same trip.
func (s *Store) CreateIncident(_ context.Context, inc *domain.Incident) error {
	const op = "memory.Incident.Create"

	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.incidents[inc.ID]; ok {
		return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
	}
	for _, other := range s.incidents {
		if other.TripID == inc.TripID && other.Status.Open() {
			return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
		}
	}
	s.incidents[inc.ID] = copyIncident(inc)
	return nil
}

func (s *Store) GetIncident(_ context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "memory.Incident.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return copyIncident(inc), nil
}

func (s *Store) UpdateIncident(_ context.Context, id uuid.UUID, patch domain.IncidentPatch) (*domain.Incident, error) {
	const op = "memory.Incident.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	patch.Apply(inc)
	return copyIncident(inc), nil
}

func (s *Store) OpenIncidentForTrip(_ context.Context, tripID uuid.UUID) (*domain.Incident, error) {
	const op = "memory.Incident.OpenForTrip"

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inc := range s.incidents {
		if inc.TripID == tripID && inc.Status.Open() {
			return copyIncident(inc), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
}

func (s *Store) ListIncidentsByOwner(_ context.Context, ownerID string) ([]*domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Incident, 0)
	for _, inc := range s.incidents {
		if inc.OwnerID == ownerID {
			out = append(out, copyIncident(inc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
