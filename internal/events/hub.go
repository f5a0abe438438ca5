package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"safetrip/internal/domain"
	"safetrip/internal/observability/metrics"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTrip     Kind = "trip"
	KindIncident Kind = "incident"
)

// Change is a snapshot of a record after a state change.
type Change struct {
	Kind     Kind             `json:"kind"`
	ID       uuid.UUID        `json:"id"`
	Trip     *domain.Trip     `json:"trip,omitempty"`
	Incident *domain.Incident `json:"incident,omitempty"`
	At       time.Time        `json:"at"`
}

// Sink receives every change published on the hub.
type Sink interface {
	Deliver(ctx context.Context, c Change)
}

const (
	defaultBuffer = 16
	sinkBuffer    = 256
)

type key struct {
	kind Kind
	id   uuid.UUID
}

type subscriber struct {
	ch   chan Change
	once sync.Once
	done chan struct{}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

type Hub struct {
	logger *slog.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[key]map[uint64]*subscriber
	sinks  map[uint64]*subscriber
	nextID uint64
	closed bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		buffer: defaultBuffer,
		subs:   make(map[key]map[uint64]*subscriber),
		sinks:  make(map[uint64]*subscriber),
	}
}

func (h *Hub) run(sub *subscriber, kind Kind, fn func(Change)) {
	defer close(sub.done)
	for c := range sub.ch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					h.logger.Error("subscriber panicked",
						slog.String("kind", string(kind)),
						slog.Any("panic", r))
				}
			}()
			fn(c)
		}()
	}
}

// Subscribe delivers changes of one record to fn, in publish order, on a
// dedicated goroutine. The returned func unsubscribes and is safe to call
// more than once.
func (h *Hub) Subscribe(kind Kind, id uuid.UUID, fn func(Change)) func() {
	sub := &subscriber{ch: make(chan Change, h.buffer), done: make(chan struct{})}
	k := key{kind: kind, id: id}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.done)
		return func() {}
	}
	h.nextID++
	subID := h.nextID
	if h.subs[k] == nil {
		h.subs[k] = make(map[uint64]*subscriber)
	}
	h.subs[k][subID] = sub
	h.mu.Unlock()

	go h.run(sub, kind, fn)

	return func() {
		h.mu.Lock()
		if set, ok := h.subs[k]; ok {
			delete(set, subID)
			if len(set) == 0 {
				delete(h.subs, k)
			}
		}
		sub.close()
		h.mu.Unlock()
	}
}

// AddSink attaches a consumer of every change.
func (h *Hub) AddSink(s Sink) {
	sub := &subscriber{ch: make(chan Change, sinkBuffer), done: make(chan struct{})}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.nextID++
	h.sinks[h.nextID] = sub
	h.mu.Unlock()

	go h.run(sub, "sink", func(c Change) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Deliver(ctx, c)
	})
}

// Publish never blocks. A subscriber whose buffer is full misses the change.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, sub := range h.subs[key{kind: c.Kind, id: c.ID}] {
		h.offer(sub, c)
	}
	for _, sub := range h.sinks {
		h.offer(sub, c)
	}
}

func (h *Hub) offer(sub *subscriber, c Change) {
	select {
	case sub.ch <- c:
	default:
		metrics.IncEventDropped(string(c.Kind))
		h.logger.Warn("slow subscriber, change dropped",
			slog.String("kind", string(c.Kind)),
			slog.String("id", c.ID.String()))
	}
}

func (h *Hub) PublishTrip(t *domain.Trip) {
	snapshot := *t
	h.Publish(Change{Kind: KindTrip, ID: t.ID, Trip: &snapshot, At: time.Now().UTC()})
}

func (h *Hub) PublishIncident(inc *domain.Incident) {
	snapshot := *inc
	h.Publish(Change{Kind: KindIncident, ID: inc.ID, Incident: &snapshot, At: time.Now().UTC()})
}

// Close stops every subscriber and waits for in-flight deliveries.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*subscriber
	for _, set := range h.subs {
		for _, sub := range set {
			all = append(all, sub)
		}
	}
	for _, sub := range h.sinks {
		all = append(all, sub)
	}
	h.subs = make(map[key]map[uint64]*subscriber)
	h.sinks = make(map[uint64]*subscriber)
	for _, sub := range all {
		sub.close()
	}
	h.mu.Unlock()

	for _, sub := range all {
		<-sub.done
	}
}
