package location

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"safetrip/internal/clock"
	"safetrip/internal/domain"

	"github.com/google/uuid"
)

const (
	defaultLat      = 28.6139
	defaultLng      = 77.2090
	defaultAccuracy = 5.0
	jitterDegrees   = 0.00005
)

// Simulator fabricates fixes around a fixed origin for demo runs.
type Simulator struct {
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	last    map[uuid.UUID]domain.Location
	watches map[Handle]context.CancelFunc
	nextID  Handle
	jitter  func() float64
}

type SimulatorOption func(*Simulator)

// WithJitter overrides the random offset generator. fn must return values
// in [-1, 1].
func WithJitter(fn func() float64) SimulatorOption {
	return func(s *Simulator) { s.jitter = fn }
}

func NewSimulator(clk clock.Clock, interval time.Duration, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		clock:    clk,
		interval: interval,
		last:     make(map[uuid.UUID]domain.Location),
		watches:  make(map[Handle]context.CancelFunc),
		jitter:   func() float64 { return rand.Float64()*2 - 1 },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Sample(ctx context.Context, tripID uuid.UUID) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.last[tripID]
	if !ok {
		acc := defaultAccuracy
		base = domain.Location{Lat: defaultLat, Lng: defaultLng, Accuracy: &acc}
	}

	next := domain.Location{
		Lat:       base.Lat + s.jitter()*jitterDegrees,
		Lng:       base.Lng + s.jitter()*jitterDegrees,
		Accuracy:  base.Accuracy,
		Timestamp: s.clock.Now(),
	}
	s.last[tripID] = next
	return next, nil
}

// Record moves the simulated origin to a fix reported by a real device.
func (s *Simulator) Record(_ context.Context, tripID uuid.UUID, loc domain.Location) error {
	s.mu.Lock()
	s.last[tripID] = loc
	s.mu.Unlock()
	return nil
}

func (s *Simulator) Watch(tripID uuid.UUID, onSample func(domain.Location), onError func(error)) (Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.nextID++
	h := s.nextID
	s.watches[h] = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				loc, err := s.Sample(ctx, tripID)
				if err != nil {
					if onError != nil && ctx.Err() == nil {
						onError(err)
					}
					continue
				}
				onSample(loc)
			}
		}
	}()

	return h, nil
}

func (s *Simulator) Cancel(h Handle) {
	s.mu.Lock()
	cancel, ok := s.watches[h]
	delete(s.watches, h)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}
