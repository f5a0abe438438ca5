package workers_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrip/internal/config"
	"safetrip/internal/domain"
	"safetrip/internal/notify"
	"safetrip/internal/workers"
	"safetrip/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

type chanQueue struct {
	jobs chan domain.PushJob
}

func (q *chanQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.PushJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return domain.PushJob{}, ctx.Err()
	case <-time.After(timeout):
		return domain.PushJob{}, e.ErrPushQueueEmpty
	}
}

func runSender(t *testing.T, cfg config.PushConfig, status func(hit int32) int, jobs ...domain.PushJob) *int32 {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		assert.Equal(t, "key=secret", r.Header.Get("Authorization"))
		w.WriteHeader(status(n))
	}))
	t.Cleanup(srv.Close)

	channel, err := notify.NewHTTPPush(srv.URL, "secret", time.Second)
	require.NoError(t, err)

	q := &chanQueue{jobs: make(chan domain.PushJob, len(jobs))}
	for _, j := range jobs {
		q.jobs <- j
	}

	ctx, cancel := context.WithCancel(context.Background())
	sender := workers.NewPushSender(newTestLogger(), cfg, q, channel)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sender.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return &hits
}

func job() domain.PushJob {
	return domain.PushJob{
		IncidentID: uuid.New(),
		Token:      "device-token",
		Message:    domain.PushMessage{Title: "SOS", Body: "help"},
	}
}

func TestPushSender_RetriesUntilDelivered(t *testing.T) {
	t.Parallel()

	cfg := config.PushConfig{MaxRetries: 3, Backoff: time.Millisecond}
	hits := runSender(t, cfg, func(n int32) int {
		if n < 3 {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	}, job())

	require.Eventually(t, func() bool { return atomic.LoadInt32(hits) == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 3, atomic.LoadInt32(hits))
}

func TestPushSender_DropsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	cfg := config.PushConfig{MaxRetries: 2, Backoff: time.Millisecond}
	hits := runSender(t, cfg, func(int32) int { return http.StatusInternalServerError }, job(), job())

	require.Eventually(t, func() bool { return atomic.LoadInt32(hits) == 4 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 4, atomic.LoadInt32(hits))
}
