package memory

import (
	"context"
	"fmt"
	"sort"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
)

func (s *Store) CreateTrip(_ context.Context, t *domain.Trip) error {
	const op = "memory.Trip.Create"

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[t.ID]; ok {
		return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
	}
	s.trips[t.ID] = copyTrip(t)
	return nil
}

func (s *Store) GetTrip(_ context.Context, id uuid.UUID) (*domain.Trip, error) {
	const op = "memory.Trip.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return copyTrip(t), nil
}

func (s *Store) UpdateTrip(_ context.Context, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error) {
	const op = "memory.Trip.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	patch.Apply(t, s.clock.Now())
	return copyTrip(t), nil
}

func (s *Store) ListTripsByOwner(_ context.Context, ownerID string) ([]*domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Trip, 0)
	for _, t := range s.trips {
		if t.OwnerID == ownerID {
			out = append(out, copyTrip(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *Store) ListActiveTrips(_ context.Context) ([]*domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Trip, 0)
	for _, t := range s.trips {
		if t.Active {
			out = append(out, copyTrip(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}
