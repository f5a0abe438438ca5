package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrip/internal/domain"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type recorder struct {
	mu  sync.Mutex
	got []Change
}

func (r *recorder) add(c Change) {
	r.mu.Lock()
	r.got = append(r.got, c)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *recorder) Deliver(_ context.Context, c Change) { r.add(c) }

func TestHub_DeliversInOrderForOneRecord(t *testing.T) {
	t.Parallel()

	h := newTestHub()
	defer h.Close()

	inc := &domain.Incident{ID: uuid.New(), Status: domain.IncidentPending}
	rec := &recorder{}
	unsubscribe := h.Subscribe(KindIncident, inc.ID, rec.add)
	defer unsubscribe()

	for _, st := range []domain.IncidentStatus{domain.IncidentPending, domain.IncidentBroadcasting, domain.IncidentResolved} {
		inc.Status = st
		h.PublishIncident(inc)
	}

	require.Eventually(t, func() bool { return rec.len() == 3 }, time.Second, time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, domain.IncidentPending, rec.got[0].Incident.Status)
	assert.Equal(t, domain.IncidentBroadcasting, rec.got[1].Incident.Status)
	assert.Equal(t, domain.IncidentResolved, rec.got[2].Incident.Status)
}

func TestHub_OtherRecordsNotDelivered(t *testing.T) {
	t.Parallel()

	h := newTestHub()
	defer h.Close()

	rec := &recorder{}
	unsubscribe := h.Subscribe(KindTrip, uuid.New(), rec.add)
	defer unsubscribe()

	h.PublishTrip(&domain.Trip{ID: uuid.New()})
	h.PublishIncident(&domain.Incident{ID: uuid.New()})

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, rec.len())
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	h := newTestHub()
	defer h.Close()

	trip := &domain.Trip{ID: uuid.New()}
	rec := &recorder{}
	unsubscribe := h.Subscribe(KindTrip, trip.ID, rec.add)

	h.PublishTrip(trip)
	require.Eventually(t, func() bool { return rec.len() == 1 }, time.Second, time.Millisecond)

	unsubscribe()
	unsubscribe()
	h.PublishTrip(trip)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.len())
}

func TestHub_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	t.Parallel()

	h := newTestHub()

	trip := &domain.Trip{ID: uuid.New()}
	release := make(chan struct{})
	unsubscribe := h.Subscribe(KindTrip, trip.ID, func(Change) { <-release })
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*4; i++ {
			h.PublishTrip(trip)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publisher blocked on a slow subscriber")
	}
	close(release)
	h.Close()
}

func TestHub_SinkSeesEveryRecord(t *testing.T) {
	t.Parallel()

	h := newTestHub()
	sink := &recorder{}
	h.AddSink(sink)

	h.PublishTrip(&domain.Trip{ID: uuid.New()})
	h.PublishIncident(&domain.Incident{ID: uuid.New()})

	require.Eventually(t, func() bool { return sink.len() == 2 }, time.Second, time.Millisecond)
	h.Close()
}

func TestHub_SubscriberPanicIsContained(t *testing.T) {
	t.Parallel()

	h := newTestHub()
	defer h.Close()

	trip := &domain.Trip{ID: uuid.New()}
	rec := &recorder{}
	calls := 0
	unsubscribe := h.Subscribe(KindTrip, trip.ID, func(c Change) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		rec.add(c)
	})
	defer unsubscribe()

	h.PublishTrip(trip)
	h.PublishTrip(trip)

	require.Eventually(t, func() bool { return rec.len() == 1 }, time.Second, time.Millisecond)
}
