package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"safetrip/internal/domain"
	"safetrip/internal/observability/metrics"

	"golang.org/x/sync/semaphore"
)

const defaultParallel = 8

// FanOut alerts every guardian of an incident owner over the push channel.
type FanOut struct {
	directory GuardianDirectory
	channel   Channel
	linker    *Linker
	logger    *slog.Logger
	parallel  int64
}

type Option func(*FanOut)

func WithParallel(n int64) Option {
	return func(f *FanOut) {
		if n > 0 {
			f.parallel = n
		}
	}
}

func NewFanOut(directory GuardianDirectory, channel Channel, linker *Linker, logger *slog.Logger, opts ...Option) *FanOut {
	f := &FanOut{
		directory: directory,
		channel:   channel,
		linker:    linker,
		logger:    logger,
		parallel:  defaultParallel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FanOut) FallbackLink(inc *domain.Incident) string {
	return f.linker.FallbackLink(inc)
}

func (f *FanOut) message(inc *domain.Incident) domain.PushMessage {
	body := "Someone needs immediate assistance."
	if inc.Trigger == domain.TriggerTimer {
		body = "A trip was not marked safe before its ETA."
	}
	return domain.PushMessage{
		Title: "🚨 EMERGENCY ALERT",
		Body:  body,
		Data: map[string]string{
			"incident_id": inc.ID.String(),
			"trip_id":     inc.TripID.String(),
			"trigger":     string(inc.Trigger),
			"link":        f.linker.IncidentURL(inc.ID),
		},
	}
}

// Broadcast makes one attempt per known token. Individual failures end up in
// the report; only a directory failure is returned.
func (f *FanOut) Broadcast(ctx context.Context, inc *domain.Incident) (domain.BroadcastReport, error) {
	const op = "notify.FanOut.Broadcast"

	report := domain.BroadcastReport{
		IncidentID:   inc.ID,
		FallbackLink: f.linker.FallbackLink(inc),
	}

	recipients, err := f.directory.Recipients(ctx, inc.OwnerID)
	if err != nil {
		f.logger.Error("resolve guardians failed",
			slog.String("op", op),
			slog.String("incident_id", inc.ID.String()),
			slog.Any("error", err))
		return report, fmt.Errorf("%s: %w", op, err)
	}

	msg := f.message(inc)
	sem := semaphore.NewWeighted(f.parallel)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(a domain.DeliveryAttempt) {
		metrics.IncNotificationAttempt(a.Channel, string(a.Outcome))
		mu.Lock()
		report.Attempts = append(report.Attempts, a)
		mu.Unlock()
	}

	for _, r := range recipients {
		if len(r.Tokens) == 0 {
			record(domain.DeliveryAttempt{
				Guardian: r.Guardian,
				Channel:  "fallback",
				Outcome:  domain.DeliveryNoToken,
			})
			continue
		}
		for _, token := range r.Tokens {
			if err := sem.Acquire(ctx, 1); err != nil {
				record(domain.DeliveryAttempt{
					Guardian: r.Guardian,
					Token:    token,
					Channel:  f.channel.Name(),
					Outcome:  domain.DeliveryFailed,
					Error:    err.Error(),
				})
				continue
			}
			wg.Add(1)
			go func(g domain.Guardian, token string) {
				defer wg.Done()
				defer sem.Release(1)
				record(f.attempt(ctx, g, token, msg))
			}(r.Guardian, token)
		}
	}
	wg.Wait()

	f.logger.Info("incident broadcast",
		slog.String("incident_id", inc.ID.String()),
		slog.Int("attempts", len(report.Attempts)),
		slog.Int("delivered", report.Delivered()))

	return report, nil
}

func (f *FanOut) attempt(ctx context.Context, g domain.Guardian, token string, msg domain.PushMessage) (a domain.DeliveryAttempt) {
	a = domain.DeliveryAttempt{Guardian: g, Token: token, Channel: f.channel.Name()}

	defer func() {
		if r := recover(); r != nil {
			a.Outcome = domain.DeliveryFailed
			a.Error = fmt.Sprintf("panic: %v", r)
			f.logger.Error("push channel panicked",
				slog.String("channel", a.Channel),
				slog.Any("panic", r))
		}
	}()

	if err := f.channel.Send(ctx, token, msg); err != nil {
		a.Outcome = domain.DeliveryFailed
		a.Error = err.Error()
		f.logger.Warn("push attempt failed",
			slog.String("channel", a.Channel),
			slog.String("guardian", g.Phone),
			slog.Any("error", err))
		return a
	}
	a.Outcome = domain.DeliveryDelivered
	return a
}
