package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrip/internal/domain"
	"safetrip/internal/workers"
)

type fakeTrips struct {
	trips []*domain.Trip
}

func (f *fakeTrips) ListActiveTrips(context.Context) ([]*domain.Trip, error) {
	return f.trips, nil
}

type fakeResumer struct {
	mu      sync.Mutex
	live    map[uuid.UUID]bool
	resumed []uuid.UUID
}

func (f *fakeResumer) Resume(_ context.Context, trip *domain.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live[trip.ID] {
		return nil
	}
	f.resumed = append(f.resumed, trip.ID)
	f.live[trip.ID] = true
	return nil
}

func (f *fakeResumer) Sessions() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(f.live))
	for id := range f.live {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeResumer) Resumed() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.resumed...)
}

func TestTripSweeper_ResumesOnlyOrphanedTrips(t *testing.T) {
	t.Parallel()

	tracked := &domain.Trip{ID: uuid.New(), Active: true}
	orphanA := &domain.Trip{ID: uuid.New(), Active: true}
	orphanB := &domain.Trip{ID: uuid.New(), Active: true}

	trips := &fakeTrips{trips: []*domain.Trip{tracked, orphanA, orphanB}}
	engine := &fakeResumer{live: map[uuid.UUID]bool{tracked.ID: true}}

	sweeper := workers.NewTripSweeper(trips, engine, newTestLogger(), 10*time.Millisecond, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(engine.Resumed()) == 2 }, time.Second, 5*time.Millisecond)

	// later sweeps see the resumed sessions and queue nothing
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.ElementsMatch(t, []uuid.UUID{orphanA.ID, orphanB.ID}, engine.Resumed())
}
