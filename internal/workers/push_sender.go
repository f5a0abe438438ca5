package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"safetrip/internal/config"
	"safetrip/internal/domain"
	"safetrip/internal/notify"
	"safetrip/internal/observability/metrics"
	"safetrip/pkg/e"
)

type PushQueue interface {
	BRPop(ctx context.Context, timeout time.Duration) (domain.PushJob, error)
}

// PushSender drains the push queue and delivers each job through the HTTP
// push gateway, retrying with linear backoff.
type PushSender struct {
	logger     *slog.Logger
	queue      PushQueue
	channel    notify.Channel
	maxRetries int
	backoff    time.Duration
	popTimeout time.Duration
}

func NewPushSender(logger *slog.Logger, cfg config.PushConfig, q PushQueue, channel notify.Channel) *PushSender {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &PushSender{
		logger:     logger,
		queue:      q,
		channel:    channel,
		maxRetries: maxRetries,
		backoff:    cfg.Backoff,
		popTimeout: 5 * time.Second,
	}
}

func (s *PushSender) Run(ctx context.Context) {
	s.logger.Info("pushSender STARTED", slog.String("channel", s.channel.Name()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pushSender STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		job, err := s.queue.BRPop(ctx, s.popTimeout)
		if err != nil {
			if errors.Is(err, e.ErrPushQueueEmpty) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("BRPop failed", slog.Any("error", err))
			if !sleepCtx(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}

		s.logger.Debug("sending push", slog.String("incident_id", job.IncidentID.String()))
		s.sendWithRetry(ctx, job)
	}
}

// sendWithRetry reports whether the job was delivered.
func (s *PushSender) sendWithRetry(ctx context.Context, job domain.PushJob) bool {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Info("stop retries due to context cancel")
			return false
		}

		err := s.channel.Send(ctx, job.Token, job.Message)
		if err == nil {
			metrics.IncNotificationAttempt(s.channel.Name(), string(domain.DeliveryDelivered))
			return true
		}

		s.logger.Warn("push failed",
			slog.Int("attempt", attempt),
			slog.String("incident_id", job.IncidentID.String()),
			slog.String("reason", err.Error()),
		)

		if attempt == s.maxRetries {
			break
		}
		metrics.IncPushRetry()
		if !sleepCtx(ctx, time.Duration(attempt)*s.backoff) {
			return false
		}
	}

	metrics.IncNotificationAttempt(s.channel.Name(), string(domain.DeliveryFailed))
	metrics.IncPushDropped()
	s.logger.Error("push dropped after retries",
		slog.String("incident_id", job.IncidentID.String()),
		slog.Int("attempts", s.maxRetries))
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
