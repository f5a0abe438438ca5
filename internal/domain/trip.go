package domain

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      string     `json:"owner_id"`
	StartedAt    time.Time  `json:"started_at"`
	ETAMinutes   int        `json:"eta_minutes"`
	Active       bool       `json:"active"`
	LastLocation *Location  `json:"last_location"`
	LastUpdateAt *time.Time `json:"last_update_at,omitempty"`
}

// Deadline is the instant the trip becomes overdue.
func (t *Trip) Deadline() time.Time {
	return t.StartedAt.Add(time.Duration(t.ETAMinutes) * time.Minute)
}

// TripPatch is a partial update. Nil fields are left untouched.
type TripPatch struct {
	Active       *bool
	LastLocation *Location
}

// Apply merges p into t and stamps the update time. Deactivation is terminal
// and a location only replaces an older one.
func (p TripPatch) Apply(t *Trip, now time.Time) {
	if p.Active != nil && t.Active {
		t.Active = *p.Active
	}
	if p.LastLocation != nil && p.LastLocation.NewerThan(t.LastLocation) {
		loc := *p.LastLocation
		t.LastLocation = &loc
	}
	t.LastUpdateAt = &now
}

type StartTripRequest struct {
	ETAMinutes int `json:"eta_minutes" validate:"required,eta"`
}

type TripView struct {
	Trip
	RemainingSeconds int64 `json:"remaining_seconds"`
	State            string `json:"state"`
}
