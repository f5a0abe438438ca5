package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

type ActiveTrips interface {
	ListActiveTrips(ctx context.Context) ([]*domain.Trip, error)
}

// Resumer re-arms sessions for persisted trips.
type Resumer interface {
	Resume(ctx context.Context, trip *domain.Trip) error
	Sessions() []uuid.UUID
}

// TripSweeper periodically hands active trips without a live session back to
// the engine, so a restart or a lost session does not leave a trip unwatched.
type TripSweeper struct {
	trips    ActiveTrips
	engine   Resumer
	logger   *slog.Logger
	interval time.Duration
	poolSize int
	jobs     chan *domain.Trip
}

func NewTripSweeper(trips ActiveTrips, engine Resumer, logger *slog.Logger, interval time.Duration, poolSize int) *TripSweeper {
	if poolSize < 1 {
		poolSize = 1
	}
	return &TripSweeper{
		trips:    trips,
		engine:   engine,
		logger:   logger,
		interval: interval,
		poolSize: poolSize,
		jobs:     make(chan *domain.Trip, 100),
	}
}

func (w *TripSweeper) Run(ctx context.Context) {
	w.logger.Info("trip sweeper STARTED",
		slog.Duration("interval", w.interval),
		slog.Int("workers", w.poolSize))

	var wg sync.WaitGroup

	for i := 0; i < w.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.worker(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.producer(ctx)
	}()
	wg.Wait()

	w.logger.Info("trip sweeper STOPPED")
}

func (w *TripSweeper) producer(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TripSweeper) sweep(ctx context.Context) {
	trips, err := w.trips.ListActiveTrips(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("list active trips failed", slog.Any("error", err))
		}
		return
	}

	live := make(map[uuid.UUID]struct{})
	for _, id := range w.engine.Sessions() {
		live[id] = struct{}{}
	}

	queued := 0
	for _, t := range trips {
		if _, ok := live[t.ID]; ok {
			continue
		}
		select {
		case w.jobs <- t:
			queued++
		case <-ctx.Done():
			return
		}
	}
	if queued > 0 {
		w.logger.Info("orphaned trips queued for resume", slog.Int("count", queued))
	}
}

func (w *TripSweeper) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trip := <-w.jobs:
			if err := w.engine.Resume(ctx, trip); err != nil {
				w.logger.Error("resume trip failed",
					slog.String("trip_id", trip.ID.String()),
					slog.Any("error", err))
			}
		}
	}
}
