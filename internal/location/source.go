package location

import (
	"context"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

// Handle identifies one active watch.
type Handle uint64

// Source yields position fixes for a trip.
type Source interface {
	Sample(ctx context.Context, tripID uuid.UUID) (domain.Location, error)
	Watch(tripID uuid.UUID, onSample func(domain.Location), onError func(error)) (Handle, error)
	Cancel(h Handle)
}

// Recorder is implemented by sources that accept fixes pushed by the device.
type Recorder interface {
	Record(ctx context.Context, tripID uuid.UUID, loc domain.Location) error
}
