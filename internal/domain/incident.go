package domain

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	IncidentPending      IncidentStatus = "pending"
	IncidentBroadcasting IncidentStatus = "broadcasting"
	IncidentResolved     IncidentStatus = "resolved"
)

func (s IncidentStatus) rank() int {
	switch s {
	case IncidentPending:
		return 1
	case IncidentBroadcasting:
		return 2
	case IncidentResolved:
		return 3
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving from s to next goes strictly forward.
func (s IncidentStatus) CanAdvanceTo(next IncidentStatus) bool {
	return next.rank() > s.rank()
}

func (s IncidentStatus) Open() bool {
	return s != IncidentResolved
}

type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerTimer  Trigger = "timer"
)

type Incident struct {
	ID            uuid.UUID      `json:"id"`
	TripID        uuid.UUID      `json:"trip_id"`
	OwnerID       string         `json:"owner_id"`
	Lat           float64        `json:"lat"`
	Lng           float64        `json:"lng"`
	LocationKnown bool           `json:"location_known"`
	Trigger       Trigger        `json:"trigger"`
	Status        IncidentStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
}

type IncidentPatch struct {
	Status     *IncidentStatus
	ResolvedAt *time.Time
}

// Apply merges p into inc. A status that would move backwards is ignored.
func (p IncidentPatch) Apply(inc *Incident) {
	if p.Status != nil && inc.Status.CanAdvanceTo(*p.Status) {
		inc.Status = *p.Status
		if *p.Status == IncidentResolved && p.ResolvedAt != nil {
			at := *p.ResolvedAt
			inc.ResolvedAt = &at
		}
	}
}

type FallbackLinkResponse struct {
	IncidentID uuid.UUID `json:"incident_id"`
	URL        string    `json:"url"`
}
