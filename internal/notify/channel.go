package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"safetrip/internal/domain"

	"github.com/google/uuid"
)

// Channel delivers one push message to one device token.
type Channel interface {
	Name() string
	Send(ctx context.Context, token string, msg domain.PushMessage) error
}

// Enqueuer is the queue the live push channel hands jobs to.
type Enqueuer interface {
	Enqueue(ctx context.Context, job domain.PushJob) error
}

// QueuedPush hands messages to the push worker through a queue. A successful
// enqueue counts as delivered.
type QueuedPush struct {
	queue Enqueuer
	now   func() time.Time
}

func NewQueuedPush(queue Enqueuer) *QueuedPush {
	return &QueuedPush{queue: queue, now: func() time.Time { return time.Now().UTC() }}
}

func (q *QueuedPush) Name() string { return "queued_push" }

func (q *QueuedPush) Send(ctx context.Context, token string, msg domain.PushMessage) error {
	incidentID, _ := uuid.Parse(msg.Data["incident_id"])
	return q.queue.Enqueue(ctx, domain.PushJob{
		IncidentID: incidentID,
		Token:      token,
		Message:    msg,
		QueuedAt:   q.now(),
	})
}

// HTTPPush posts token-addressed messages to a push gateway.
type HTTPPush struct {
	url       string
	serverKey string
	client    *http.Client
}

type httpPushBody struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func NewHTTPPush(url, serverKey string, timeout time.Duration) (*HTTPPush, error) {
	if url == "" {
		return nil, errors.New("http push: empty url")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPPush{
		url:       url,
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (h *HTTPPush) Name() string { return "http_push" }

func (h *HTTPPush) Send(ctx context.Context, token string, msg domain.PushMessage) error {
	body, err := json.Marshal(httpPushBody{
		To:           token,
		Notification: pushNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Priority:     "high",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.serverKey != "" {
		req.Header.Set("Authorization", "key="+h.serverKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %s", resp.Status)
	}
	return nil
}

// Log writes messages to the logger and keeps them for inspection.
type Log struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []domain.PushJob
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Send(_ context.Context, token string, msg domain.PushMessage) error {
	l.logger.Info("push notification",
		slog.String("token", token),
		slog.String("title", msg.Title),
		slog.String("link", msg.Data["link"]))

	incidentID, _ := uuid.Parse(msg.Data["incident_id"])
	l.mu.Lock()
	l.sent = append(l.sent, domain.PushJob{IncidentID: incidentID, Token: token, Message: msg})
	l.mu.Unlock()
	return nil
}

func (l *Log) Sent() []domain.PushJob {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.PushJob, len(l.sent))
	copy(out, l.sent)
	return out
}
