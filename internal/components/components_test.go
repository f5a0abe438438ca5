package components

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrip/internal/config"
	"safetrip/internal/domain"
	"safetrip/internal/middleware"
	"safetrip/internal/notify"
)

const testSecret = "components-test-secret"

func demoConfig() *config.Config {
	return &config.Config{
		Env:  "test",
		Mode: config.ModeDemo,
		Auth: config.AuthConfig{JWTSecret: testSecret},
		Trip: config.TripConfig{
			TickInterval:   50 * time.Millisecond,
			SampleTimeout:  time.Second,
			FanOutTimeout:  5 * time.Second,
			WatchInterval:  50 * time.Millisecond,
			SweepInterval:  time.Minute,
			SweepWorkers:   1,
			FanOutParallel: 2,
		},
		Fallback: config.FallbackConfig{SiteURL: "http://safetrip.test"},
		Limits: config.LimitsConfig{
			SOSPerMinute:      60,
			ReportPerMinute:   60,
			LocationPerMinute: 600,
		},
	}
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestDemoMode_SOSReachesGuardian(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	comps, err := InitComponents(context.Background(), demoConfig(), logger)
	require.NoError(t, err)
	defer comps.ShutdownAll()
	require.NotNil(t, comps.Outbox)

	srv := httptest.NewServer(comps.HttpServer.Handler())
	defer srv.Close()

	token := func(sub string) string {
		tok, err := middleware.IssueToken(testSecret, sub, time.Hour)
		require.NoError(t, err)
		return tok
	}
	traveller := client{t: t, base: srv.URL, token: token("traveller")}
	guardian := client{t: t, base: srv.URL, token: token("guardian")}

	require.Equal(t, http.StatusOK, guardian.do(http.MethodPut, "/api/v1/me/",
		domain.UpsertProfileRequest{Name: "Mom", Phone: "+15550000002"}, nil))
	require.Equal(t, http.StatusNoContent, guardian.do(http.MethodPost, "/api/v1/me/push-tokens",
		domain.RegisterPushTokenRequest{Token: "guardian-device-token"}, nil))

	require.Equal(t, http.StatusOK, traveller.do(http.MethodPut, "/api/v1/me/",
		domain.UpsertProfileRequest{Name: "Asha", Phone: "+15550000001"}, nil))
	require.Equal(t, http.StatusCreated, traveller.do(http.MethodPost, "/api/v1/me/guardians",
		domain.Guardian{Name: "Mom", Phone: "+15550000002"}, nil))

	var trip domain.TripView
	require.Equal(t, http.StatusCreated, traveller.do(http.MethodPost, "/api/v1/trips/",
		domain.StartTripRequest{ETAMinutes: 30}, &trip))
	assert.True(t, trip.Active)

	var inc domain.Incident
	require.Equal(t, http.StatusOK, traveller.do(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/sos", nil, &inc))
	assert.Equal(t, trip.ID, inc.TripID)
	assert.Equal(t, domain.TriggerManual, inc.Trigger)

	require.Eventually(t, func() bool {
		for _, job := range comps.Outbox.Sent() {
			if job.Token == "guardian-device-token" && job.IncidentID == inc.ID {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	// the share page needs no token
	resp, err := http.Get(srv.URL + "/incident/" + inc.ID.String())
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(page), "Emergency alert"))

	// a second SOS returns the open incident
	var again domain.Incident
	require.Equal(t, http.StatusOK, traveller.do(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/sos", nil, &again))
	assert.Equal(t, inc.ID, again.ID)

	assert.Equal(t, http.StatusForbidden, guardian.do(http.MethodPost, "/api/v1/incidents/"+inc.ID.String()+"/resolve", nil, nil))

	var resolved domain.Incident
	require.Equal(t, http.StatusOK, traveller.do(http.MethodPost, "/api/v1/incidents/"+inc.ID.String()+"/resolve", nil, &resolved))
	assert.Equal(t, domain.IncidentResolved, resolved.Status)
}

func TestDemoMode_RequiresToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	comps, err := InitComponents(context.Background(), demoConfig(), logger)
	require.NoError(t, err)
	defer comps.ShutdownAll()

	srv := httptest.NewServer(comps.HttpServer.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/trips/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type countingQueue struct{ jobs int }

func (q *countingQueue) Enqueue(context.Context, domain.PushJob) error {
	q.jobs++
	return nil
}

func TestLivePush_DisabledSenderOnlyLogs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := &countingQueue{}

	channel, outbox := livePush(config.PushConfig{Disabled: true}, queue, logger)
	require.NotNil(t, outbox)
	assert.Equal(t, "log", channel.Name())

	msg := domain.PushMessage{Title: "Emergency alert", Data: map[string]string{}}
	require.NoError(t, channel.Send(context.Background(), "guardian-device-token", msg))
	assert.Equal(t, 0, queue.jobs)
	assert.Len(t, outbox.Sent(), 1)

	channel, outbox = livePush(config.PushConfig{}, queue, logger)
	assert.Nil(t, outbox)
	assert.IsType(t, &notify.QueuedPush{}, channel)
	require.NoError(t, channel.Send(context.Background(), "guardian-device-token", msg))
	assert.Equal(t, 1, queue.jobs)
}
