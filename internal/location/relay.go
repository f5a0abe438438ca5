package location

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"safetrip/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// LatestStore is the shared backing store the relay writes device fixes to.
type LatestStore interface {
	Save(ctx context.Context, tripID uuid.UUID, loc domain.Location) error
	Latest(ctx context.Context, tripID uuid.UUID) (domain.Location, error)
	Subscribe(ctx context.Context, tripID uuid.UUID, onSample func(domain.Location), onError func(error)) error
}

// Relay serves fixes pushed by devices through a shared store so every
// instance observes them.
type Relay struct {
	store       LatestStore
	logger      *slog.Logger
	minInterval time.Duration

	mu      sync.Mutex
	watches map[Handle]context.CancelFunc
	nextID  Handle
}

func NewRelay(store LatestStore, logger *slog.Logger, minInterval time.Duration) *Relay {
	return &Relay{
		store:       store,
		logger:      logger,
		minInterval: minInterval,
		watches:     make(map[Handle]context.CancelFunc),
	}
}

func (r *Relay) Sample(ctx context.Context, tripID uuid.UUID) (domain.Location, error) {
	return r.store.Latest(ctx, tripID)
}

func (r *Relay) Record(ctx context.Context, tripID uuid.UUID, loc domain.Location) error {
	return r.store.Save(ctx, tripID, loc)
}

// Watch forwards published fixes at most once per minInterval. Fixes arriving
// faster are dropped; the store still holds the newest one.
func (r *Relay) Watch(tripID uuid.UUID, onSample func(domain.Location), onError func(error)) (Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())

	limit := rate.Inf
	if r.minInterval > 0 {
		limit = rate.Every(r.minInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	err := r.store.Subscribe(ctx, tripID, func(loc domain.Location) {
		if !limiter.Allow() {
			return
		}
		onSample(loc)
	}, onError)
	if err != nil {
		cancel()
		r.logger.Error("location watch failed",
			slog.String("trip_id", tripID.String()),
			slog.Any("error", err))
		return 0, err
	}

	r.mu.Lock()
	r.nextID++
	h := r.nextID
	r.watches[h] = cancel
	r.mu.Unlock()

	return h, nil
}

func (r *Relay) Cancel(h Handle) {
	r.mu.Lock()
	cancel, ok := r.watches[h]
	delete(r.watches, h)
	r.mu.Unlock()

	if ok {
		cancel()
	}
}
