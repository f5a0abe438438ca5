package memory

import (
	"sync"

	"safetrip/internal/clock"
	"safetrip/internal/domain"

	"github.com/google/uuid"
)

// Store keeps every record in process memory. Returned records are copies.
type Store struct {
	clock clock.Clock

	mu        sync.RWMutex
	trips     map[uuid.UUID]*domain.Trip
	incidents map[uuid.UUID]*domain.Incident
	reports   map[uuid.UUID]*domain.Report
	users     map[string]*domain.User
}

func New(clk clock.Clock) *Store {
	return &Store{
		clock:     clk,
		trips:     make(map[uuid.UUID]*domain.Trip),
		incidents: make(map[uuid.UUID]*domain.Incident),
		reports:   make(map[uuid.UUID]*domain.Report),
		users:     make(map[string]*domain.User),
	}
}

func copyTrip(t *domain.Trip) *domain.Trip {
	c := *t
	if t.LastLocation != nil {
		loc := *t.LastLocation
		c.LastLocation = &loc
	}
	if t.LastUpdateAt != nil {
		at := *t.LastUpdateAt
		c.LastUpdateAt = &at
	}
	return &c
}

func copyIncident(i *domain.Incident) *domain.Incident {
	c := *i
	if i.ResolvedAt != nil {
		at := *i.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Guardians = append([]domain.Guardian(nil), u.Guardians...)
	c.PushTokens = append([]string(nil), u.PushTokens...)
	return &c
}
