package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

type fakeStore struct {
	mu      sync.Mutex
	latest  map[uuid.UUID]domain.Location
	subs    map[uuid.UUID]func(domain.Location)
	subErr  error
	cancels int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		latest: make(map[uuid.UUID]domain.Location),
		subs:   make(map[uuid.UUID]func(domain.Location)),
	}
}

func (f *fakeStore) Save(_ context.Context, tripID uuid.UUID, loc domain.Location) error {
	f.mu.Lock()
	f.latest[tripID] = loc
	fn := f.subs[tripID]
	f.mu.Unlock()
	if fn != nil {
		fn(loc)
	}
	return nil
}

func (f *fakeStore) Latest(_ context.Context, tripID uuid.UUID) (domain.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc, ok := f.latest[tripID]
	if !ok {
		return loc, e.ErrNoFix
	}
	return loc, nil
}

func (f *fakeStore) Subscribe(ctx context.Context, tripID uuid.UUID, onSample func(domain.Location), _ func(error)) error {
	if f.subErr != nil {
		return f.subErr
	}
	f.mu.Lock()
	f.subs[tripID] = onSample
	f.mu.Unlock()
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, tripID)
		f.cancels++
		f.mu.Unlock()
	}()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelay_SampleWithoutFix(t *testing.T) {
	t.Parallel()

	r := NewRelay(newFakeStore(), discardLogger(), 0)
	_, err := r.Sample(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNoFix)
}

func TestRelay_RecordThenSample(t *testing.T) {
	t.Parallel()

	r := NewRelay(newFakeStore(), discardLogger(), 0)
	tripID := uuid.New()
	want := domain.Location{Lat: 1, Lng: 2, Timestamp: time.Unix(100, 0).UTC()}

	require.NoError(t, r.Record(context.Background(), tripID, want))

	got, err := r.Sample(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelay_WatchThrottles(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := NewRelay(store, discardLogger(), time.Hour)
	tripID := uuid.New()

	var mu sync.Mutex
	var seen []domain.Location
	h, err := r.Watch(tripID, func(loc domain.Location) {
		mu.Lock()
		seen = append(seen, loc)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(context.Background(), tripID, domain.Location{Lat: float64(i)}))
	}

	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()

	r.Cancel(h)
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.cancels == 1
	}, time.Second, time.Millisecond)
}

func TestRelay_WatchSubscribeError(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.subErr = errors.New("connection refused")
	r := NewRelay(store, discardLogger(), 0)

	_, err := r.Watch(uuid.New(), func(domain.Location) {}, nil)
	assert.Error(t, err)
}
