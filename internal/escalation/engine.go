package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"safetrip/internal/clock"
	"safetrip/internal/domain"
	"safetrip/internal/location"
	"safetrip/internal/observability/metrics"
	"safetrip/internal/timer"
	"safetrip/pkg/e"

	"github.com/google/uuid"
)

const (
	defaultSampleTimeout = 3 * time.Second
	defaultFanOutTimeout = 30 * time.Second
	watchWriteTimeout    = 5 * time.Second
)

var errEngineClosed = errors.New("escalation engine is shut down")

// Engine owns the trip lifecycle and raises at most one open incident per
// trip, whichever trigger arrives first.
type Engine struct {
	repo      Repository
	source    location.Source
	notifier  Notifier
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger

	tickInterval  time.Duration
	sampleTimeout time.Duration
	fanOutTimeout time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closed   bool

	// resolveMu serializes resolutions so each incident is closed once.
	resolveMu sync.Mutex

	inflight sync.WaitGroup
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

func WithSampleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sampleTimeout = d
		}
	}
}

func WithFanOutTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fanOutTimeout = d
		}
	}
}

func NewEngine(repo Repository, source location.Source, notifier Notifier, logger *slog.Logger, opts ...Option) *Engine {
	eng := &Engine{
		repo:          repo,
		source:        source,
		notifier:      notifier,
		publisher:     nopPublisher{},
		clock:         clock.System{},
		logger:        logger,
		tickInterval:  timer.DefaultInterval,
		sampleTimeout: defaultSampleTimeout,
		fanOutTimeout: defaultFanOutTimeout,
		sessions:      make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

func (en *Engine) StartTrip(ctx context.Context, ownerID string, etaMinutes int) (*domain.Trip, error) {
	const op = "escalation.Engine.StartTrip"

	if etaMinutes <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	trip := &domain.Trip{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		StartedAt:  en.clock.Now(),
		ETAMinutes: etaMinutes,
		Active:     true,
	}
	if err := en.repo.CreateTrip(ctx, trip); err != nil {
		en.logger.Error("create trip failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncTripStarted()

	s, err := en.openSession(ctx, trip, Monitoring, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sctx, cancel := context.WithTimeout(ctx, en.sampleTimeout)
	loc, err := en.source.Sample(sctx, trip.ID)
	cancel()
	if err != nil {
		en.logger.Debug("no initial fix", slog.String("trip_id", trip.ID.String()), slog.Any("error", err))
	} else {
		s.mu.Lock()
		if updated := en.acceptSample(ctx, s, loc); updated != nil {
			trip = updated
		}
		s.mu.Unlock()
	}

	en.logger.Info("trip started",
		slog.String("trip_id", trip.ID.String()),
		slog.String("owner_id", ownerID),
		slog.Int("eta_minutes", etaMinutes))
	en.publisher.PublishTrip(trip)
	return trip, nil
}

// RecordLocation stores a fix reported by the owner's device.
func (en *Engine) RecordLocation(ctx context.Context, ownerID string, tripID uuid.UUID, loc domain.Location) (*domain.Trip, error) {
	const op = "escalation.Engine.RecordLocation"

	trip, err := en.ownedTrip(ctx, op, ownerID, tripID)
	if err != nil {
		return nil, err
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = en.clock.Now()
	}

	s, err := en.ensureSession(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidState)
	}

	if rec, ok := en.source.(location.Recorder); ok {
		if err := rec.Record(ctx, tripID, loc); err != nil {
			en.logger.Warn("relay record failed",
				slog.String("trip_id", tripID.String()),
				slog.Any("error", err))
		}
	}

	if updated := en.acceptSample(ctx, s, loc); updated != nil {
		return updated, nil
	}
	return en.repo.GetTrip(ctx, tripID)
}

// TriggerSOS raises an incident on behalf of the owner.
func (en *Engine) TriggerSOS(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Incident, error) {
	const op = "escalation.Engine.TriggerSOS"

	if _, err := en.ownedTrip(ctx, op, ownerID, tripID); err != nil {
		return nil, err
	}
	return en.escalate(ctx, tripID, domain.TriggerManual)
}

func (en *Engine) onDeadline(tripID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), en.sampleTimeout+watchWriteTimeout)
	defer cancel()

	if _, err := en.escalate(ctx, tripID, domain.TriggerTimer); err != nil {
		if errors.Is(err, e.ErrInvalidState) {
			return
		}
		en.logger.Error("deadline escalation failed",
			slog.String("trip_id", tripID.String()),
			slog.Any("error", err))
	}
}

// escalate is the single entry point for both triggers.
func (en *Engine) escalate(ctx context.Context, tripID uuid.UUID, trigger domain.Trigger) (*domain.Incident, error) {
	const op = "escalation.Engine.escalate"

	started := en.clock.Now()

	trip, err := en.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s, err := en.ensureSession(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	var (
		stop     *timer.Timer
		watch    location.Handle
		watching bool
		closing  bool
	)
	defer func() {
		s.mu.Unlock()
		if closing {
			en.teardown(tripID, stop, watch, watching)
			return
		}
		if stop != nil {
			stop.Stop()
		}
	}()

	if s.state == Closed {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidState)
	}

	// The session may outlive its trip when it was armed from a stale read.
	trip, err = en.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !trip.Active {
		s.state = Closed
		stop, watch, watching = s.release(false)
		closing = true
		en.logger.Warn("trigger on inactive trip dropped",
			slog.String("trip_id", tripID.String()),
			slog.String("trigger", string(trigger)))
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidState)
	}

	if s.state == Escalated {
		metrics.IncDuplicateTrigger(string(trigger))
		return en.repo.GetIncident(ctx, s.incidentID)
	}

	if open, err := en.repo.OpenIncidentForTrip(ctx, tripID); err == nil {
		metrics.IncDuplicateTrigger(string(trigger))
		s.state, s.incidentID = Escalated, open.ID
		stop, _, _ = s.release(true)
		return open, nil
	} else if !errors.Is(err, e.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inc := &domain.Incident{
		ID:        uuid.New(),
		TripID:    tripID,
		OwnerID:   s.ownerID,
		Trigger:   trigger,
		Status:    domain.IncidentPending,
		CreatedAt: en.clock.Now(),
	}
	if loc, ok := en.captureLocation(ctx, s, trip); ok {
		inc.Lat, inc.Lng, inc.LocationKnown = loc.Lat, loc.Lng, true
	}

	if err := en.repo.CreateIncident(ctx, inc); err != nil {
		if !e.IsDuplicate(err) {
			en.logger.Error("create incident failed", slog.String("op", op), slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		open, gerr := en.repo.OpenIncidentForTrip(ctx, tripID)
		if gerr != nil {
			return nil, fmt.Errorf("%s: %w", op, gerr)
		}
		metrics.IncDuplicateTrigger(string(trigger))
		s.state, s.incidentID = Escalated, open.ID
		stop, _, _ = s.release(true)
		return open, nil
	}
	en.publisher.PublishIncident(inc)
	metrics.IncIncidentRaised(string(trigger))

	s.state, s.incidentID = Escalated, inc.ID
	stop, _, _ = s.release(true)

	broadcasting := domain.IncidentBroadcasting
	updated, err := en.repo.UpdateIncident(ctx, inc.ID, domain.IncidentPatch{Status: &broadcasting})
	if err != nil {
		en.logger.Error("mark incident broadcasting failed",
			slog.String("op", op),
			slog.String("incident_id", inc.ID.String()),
			slog.Any("error", err))
	} else {
		inc = updated
		en.publisher.PublishIncident(inc)
	}

	en.dispatch(ctx, inc)

	metrics.ObserveEscalation(en.clock.Now().Sub(started))
	en.logger.Warn("incident raised",
		slog.String("incident_id", inc.ID.String()),
		slog.String("trip_id", tripID.String()),
		slog.String("trigger", string(trigger)),
		slog.Bool("location_known", inc.LocationKnown))
	return inc, nil
}

// captureLocation prefers a fresh fix, then the session's last sample, then
// the persisted one.
func (en *Engine) captureLocation(ctx context.Context, s *session, trip *domain.Trip) (domain.Location, bool) {
	sctx, cancel := context.WithTimeout(ctx, en.sampleTimeout)
	loc, err := en.source.Sample(sctx, trip.ID)
	cancel()
	if err == nil {
		en.acceptSample(ctx, s, loc)
		return loc, true
	}
	en.logger.Debug("fresh fix unavailable", slog.String("trip_id", trip.ID.String()), slog.Any("error", err))

	if s.lastSample != nil {
		return *s.lastSample, true
	}
	if trip.LastLocation != nil {
		return *trip.LastLocation, true
	}
	return domain.Location{}, false
}

func (en *Engine) dispatch(ctx context.Context, inc *domain.Incident) {
	snapshot := *inc
	detached := context.WithoutCancel(ctx)

	en.inflight.Add(1)
	go func() {
		defer en.inflight.Done()

		fctx, cancel := context.WithTimeout(detached, en.fanOutTimeout)
		defer cancel()

		report, err := en.notifier.Broadcast(fctx, &snapshot)
		if err != nil {
			en.logger.Error("fan-out failed, incident stays broadcasting",
				slog.String("incident_id", snapshot.ID.String()),
				slog.String("fallback_link", report.FallbackLink),
				slog.Any("error", err))
			return
		}
		en.logger.Info("fan-out finished",
			slog.String("incident_id", snapshot.ID.String()),
			slog.Int("attempts", len(report.Attempts)),
			slog.Int("delivered", report.Delivered()))
	}()
}

// MarkSafe closes a trip that is still being monitored.
func (en *Engine) MarkSafe(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error) {
	const op = "escalation.Engine.MarkSafe"

	trip, err := en.ownedTrip(ctx, op, ownerID, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Active {
		return trip, nil
	}

	s, err := en.ensureSession(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return en.repo.GetTrip(ctx, tripID)
	case Escalated:
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidState)
	}
	if open, err := en.repo.OpenIncidentForTrip(ctx, tripID); err == nil {
		s.state, s.incidentID = Escalated, open.ID
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidState)
	}

	inactive := false
	updated, err := en.repo.UpdateTrip(ctx, tripID, domain.TripPatch{Active: &inactive})
	if err != nil {
		s.mu.Unlock()
		en.logger.Error("deactivate trip failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.state = Closed
	t, h, watching := s.release(false)
	s.mu.Unlock()

	en.teardown(tripID, t, h, watching)
	metrics.IncTripClosed("safe")
	en.logger.Info("trip marked safe", slog.String("trip_id", tripID.String()))
	en.publisher.PublishTrip(updated)
	return updated, nil
}

// ResolveIncident closes an incident and its trip. Resolving twice is a
// silent success. The trip is deactivated first; if that fails the incident
// stays open and the call can be retried.
func (en *Engine) ResolveIncident(ctx context.Context, ownerID string, incidentID uuid.UUID) (*domain.Incident, error) {
	const op = "escalation.Engine.ResolveIncident"

	inc, err := en.repo.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if inc.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if inc.Status == domain.IncidentResolved {
		return inc, nil
	}

	en.resolveMu.Lock()
	defer en.resolveMu.Unlock()

	s := en.lookup(inc.TripID)
	if s != nil {
		s.mu.Lock()
	}
	unlock := func() {
		if s != nil {
			s.mu.Unlock()
		}
	}

	current, err := en.repo.GetIncident(ctx, incidentID)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.Status == domain.IncidentResolved {
		unlock()
		return current, nil
	}

	inactive := false
	trip, err := en.repo.UpdateTrip(ctx, inc.TripID, domain.TripPatch{Active: &inactive})
	if err != nil {
		unlock()
		en.logger.Error("deactivate trip before resolve failed",
			slog.String("op", op),
			slog.String("trip_id", inc.TripID.String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := en.clock.Now()
	resolved := domain.IncidentResolved
	inc, err = en.repo.UpdateIncident(ctx, incidentID, domain.IncidentPatch{Status: &resolved, ResolvedAt: &now})
	if err != nil {
		unlock()
		en.logger.Error("resolve incident failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s != nil {
		s.state = Closed
		t, h, watching := s.release(false)
		s.mu.Unlock()
		en.teardown(inc.TripID, t, h, watching)
	} else {
		// a session armed while the trip was still active
		en.closeSession(inc.TripID)
	}

	metrics.IncIncidentResolved()
	metrics.IncTripClosed("resolved")
	en.logger.Info("incident resolved", slog.String("incident_id", incidentID.String()))
	en.publisher.PublishIncident(inc)
	en.publisher.PublishTrip(trip)
	return inc, nil
}

// Resume re-arms a session for an active trip loaded from storage. A trip
// whose deadline already passed escalates on the first tick.
func (en *Engine) Resume(ctx context.Context, trip *domain.Trip) error {
	const op = "escalation.Engine.Resume"

	if !trip.Active {
		return nil
	}
	if en.lookup(trip.ID) != nil {
		return nil
	}

	// trip may be a snapshot taken before a MarkSafe or a resolve
	current, err := en.repo.GetTrip(ctx, trip.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !current.Active {
		return nil
	}
	if _, err := en.ensureSession(ctx, current); err != nil {
		if errors.Is(err, e.ErrInvalidState) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (en *Engine) GetTrip(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error) {
	return en.ownedTrip(ctx, "escalation.Engine.GetTrip", ownerID, tripID)
}

// View decorates a trip with its countdown and session state.
func (en *Engine) View(t *domain.Trip) domain.TripView {
	v := domain.TripView{Trip: *t, State: Closed.String()}
	if !t.Active {
		return v
	}
	v.RemainingSeconds = int64(en.remaining(t) / time.Second)
	v.State = Monitoring.String()
	if s := en.lookup(t.ID); s != nil {
		s.mu.Lock()
		v.State = s.state.String()
		s.mu.Unlock()
	}
	return v
}

func (en *Engine) GetIncident(ctx context.Context, incidentID uuid.UUID) (*domain.Incident, error) {
	const op = "escalation.Engine.GetIncident"

	inc, err := en.repo.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inc, nil
}

func (en *Engine) ListTrips(ctx context.Context, ownerID string) ([]*domain.Trip, error) {
	const op = "escalation.Engine.ListTrips"

	trips, err := en.repo.ListTripsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trips, nil
}

func (en *Engine) ListIncidents(ctx context.Context, ownerID string) ([]*domain.Incident, error) {
	const op = "escalation.Engine.ListIncidents"

	incidents, err := en.repo.ListIncidentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return incidents, nil
}

// Remaining is the time left before the trip's deadline, zero once it has
// passed or the trip is no longer monitored.
func (en *Engine) Remaining(ctx context.Context, tripID uuid.UUID) (time.Duration, error) {
	const op = "escalation.Engine.Remaining"

	if s := en.lookup(tripID); s != nil {
		s.mu.Lock()
		t := s.timer
		s.mu.Unlock()
		if t != nil {
			return t.Remaining(), nil
		}
	}
	trip, err := en.repo.GetTrip(ctx, tripID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !trip.Active {
		return 0, nil
	}
	return en.remaining(trip), nil
}

func (en *Engine) remaining(t *domain.Trip) time.Duration {
	left := t.Deadline().Sub(en.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Sessions reports which trips currently have a live session.
func (en *Engine) Sessions() []uuid.UUID {
	en.mu.Lock()
	defer en.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(en.sessions))
	for id := range en.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops every session and waits for fan-outs still in flight.
// Persisted state is left as is so a later Resume can pick trips up again.
func (en *Engine) Shutdown() {
	en.mu.Lock()
	if en.closed {
		en.mu.Unlock()
		return
	}
	en.closed = true
	sessions := en.sessions
	en.sessions = make(map[uuid.UUID]*session)
	en.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.state = Closed
		t, h, watching := s.release(false)
		s.mu.Unlock()
		en.stopResources(t, h, watching)
	}

	en.inflight.Wait()
	en.logger.Info("escalation engine stopped", slog.Int("sessions", len(sessions)))
}

func (en *Engine) ownedTrip(ctx context.Context, op, ownerID string, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := en.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trip.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	return trip, nil
}

func (en *Engine) lookup(tripID uuid.UUID) *session {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.sessions[tripID]
}

// ensureSession returns the live session of an active trip, re-creating it
// from storage when needed.
func (en *Engine) ensureSession(ctx context.Context, trip *domain.Trip) (*session, error) {
	if s := en.lookup(trip.ID); s != nil {
		return s, nil
	}
	if !trip.Active {
		return nil, e.ErrInvalidState
	}

	open, err := en.repo.OpenIncidentForTrip(ctx, trip.ID)
	switch {
	case err == nil:
		return en.openSession(ctx, trip, Escalated, open.ID)
	case errors.Is(err, e.ErrNotFound):
		return en.openSession(ctx, trip, Monitoring, uuid.Nil)
	default:
		return nil, err
	}
}

// openSession registers a session and arms its timer and watch. The trip is
// re-read under the session lock and an inactive one gets no session.
func (en *Engine) openSession(ctx context.Context, trip *domain.Trip, state State, incidentID uuid.UUID) (*session, error) {
	en.mu.Lock()
	if en.closed {
		en.mu.Unlock()
		return nil, errEngineClosed
	}
	if s, ok := en.sessions[trip.ID]; ok {
		en.mu.Unlock()
		return s, nil
	}
	s := &session{
		tripID:     trip.ID,
		ownerID:    trip.OwnerID,
		state:      state,
		incidentID: incidentID,
	}
	if trip.LastLocation != nil {
		loc := *trip.LastLocation
		s.lastSample = &loc
	}
	s.mu.Lock()
	en.sessions[trip.ID] = s
	en.mu.Unlock()

	current, err := en.repo.GetTrip(ctx, trip.ID)
	if err == nil && !current.Active {
		err = e.ErrInvalidState
	}
	if err != nil {
		s.state = Closed
		s.mu.Unlock()
		en.forget(trip.ID, s)
		return nil, err
	}
	defer s.mu.Unlock()

	tripID := trip.ID
	if state == Monitoring {
		s.timer = timer.New(en.clock, trip.StartedAt, time.Duration(trip.ETAMinutes)*time.Minute,
			func() { en.onDeadline(tripID) })
		s.timer.Start(en.tickInterval)
	}

	h, err := en.source.Watch(tripID, func(loc domain.Location) {
		en.onWatchSample(tripID, loc)
	}, func(err error) {
		en.logger.Warn("location watch error", slog.String("trip_id", tripID.String()), slog.Any("error", err))
	})
	if err != nil {
		en.logger.Warn("location watch not started", slog.String("trip_id", tripID.String()), slog.Any("error", err))
	} else {
		s.watch, s.watching = h, true
	}

	en.logger.Debug("session opened",
		slog.String("trip_id", tripID.String()),
		slog.String("state", state.String()))
	return s, nil
}

func (en *Engine) onWatchSample(tripID uuid.UUID, loc domain.Location) {
	s := en.lookup(tripID)
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), watchWriteTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	en.acceptSample(ctx, s, loc)
}

// acceptSample persists loc if it is newer than anything seen so far and
// returns the updated trip, or nil when nothing was written. Callers hold s.mu.
func (en *Engine) acceptSample(ctx context.Context, s *session, loc domain.Location) *domain.Trip {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = en.clock.Now()
	}
	if !loc.NewerThan(s.lastSample) {
		return nil
	}
	s.lastSample = &loc

	updated, err := en.repo.UpdateTrip(ctx, s.tripID, domain.TripPatch{LastLocation: &loc})
	if err != nil {
		en.logger.Warn("persist location failed",
			slog.String("trip_id", s.tripID.String()),
			slog.Any("error", err))
		return nil
	}
	en.publisher.PublishTrip(updated)
	return updated
}

// forget drops s from the registry unless another session replaced it.
func (en *Engine) forget(tripID uuid.UUID, s *session) {
	en.mu.Lock()
	if en.sessions[tripID] == s {
		delete(en.sessions, tripID)
	}
	en.mu.Unlock()
}

func (en *Engine) closeSession(tripID uuid.UUID) {
	s := en.lookup(tripID)
	if s == nil {
		return
	}
	s.mu.Lock()
	s.state = Closed
	t, h, watching := s.release(false)
	s.mu.Unlock()
	en.teardown(tripID, t, h, watching)
}

func (en *Engine) teardown(tripID uuid.UUID, t *timer.Timer, h location.Handle, watching bool) {
	en.mu.Lock()
	delete(en.sessions, tripID)
	en.mu.Unlock()
	en.stopResources(t, h, watching)
}

func (en *Engine) stopResources(t *timer.Timer, h location.Handle, watching bool) {
	if t != nil {
		t.Stop()
	}
	if watching {
		en.source.Cancel(h)
	}
}
