package escalation

import (
	"sync"

	"safetrip/internal/domain"
	"safetrip/internal/location"
	"safetrip/internal/timer"

	"github.com/google/uuid"
)

type State int

const (
	Monitoring State = iota
	Escalated
	Closed
)

func (s State) String() string {
	switch s {
	case Monitoring:
		return "monitoring"
	case Escalated:
		return "escalated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is the in-memory side of one active trip. Every transition runs
// under mu.
type session struct {
	mu sync.Mutex

	tripID     uuid.UUID
	ownerID    string
	state      State
	timer      *timer.Timer
	watch      location.Handle
	watching   bool
	lastSample *domain.Location
	incidentID uuid.UUID
}

// release detaches the timer and the watch so they can be stopped after the
// lock is dropped. keepWatch leaves the watch attached.
func (s *session) release(keepWatch bool) (*timer.Timer, location.Handle, bool) {
	t := s.timer
	s.timer = nil
	if keepWatch || !s.watching {
		return t, 0, false
	}
	h := s.watch
	s.watching = false
	s.watch = 0
	return t, h, true
}
