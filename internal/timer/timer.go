package timer

import (
	"sync"
	"time"

	"safetrip/internal/clock"
)

const DefaultInterval = time.Second

// Timer counts down to a trip deadline and fires its callback at most once.
type Timer struct {
	clock      clock.Clock
	deadline   time.Time
	onDeadline func()
	observer   func(remaining time.Duration)

	mu      sync.Mutex
	fired   bool
	stopped bool
	firing  bool
	running bool

	stop chan struct{}
	done chan struct{}
}

type Option func(*Timer)

// WithObserver receives every countdown value produced by the tick loop.
func WithObserver(fn func(remaining time.Duration)) Option {
	return func(t *Timer) { t.observer = fn }
}

func New(clk clock.Clock, startedAt time.Time, eta time.Duration, onDeadline func(), opts ...Option) *Timer {
	t := &Timer{
		clock:      clk,
		deadline:   startedAt.Add(eta),
		onDeadline: onDeadline,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) Deadline() time.Time { return t.deadline }

func (t *Timer) Remaining() time.Duration {
	left := t.deadline.Sub(t.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Tick evaluates the clock once and reports whether this call fired the
// deadline callback.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	if t.fired || t.stopped || t.Remaining() > 0 {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.firing = true
	t.mu.Unlock()

	if t.onDeadline != nil {
		t.onDeadline()
	}

	t.mu.Lock()
	t.firing = false
	t.mu.Unlock()
	return true
}

// Start runs the tick loop on its own goroutine. Calling it twice or after
// Stop does nothing.
func (t *Timer) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	t.mu.Lock()
	if t.running || t.stopped {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	go t.loop(interval)
}

func (t *Timer) loop(interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if t.observer != nil {
				t.observer(t.Remaining())
			}
			if t.Tick() {
				return
			}
		}
	}
}

// Stop is idempotent. It waits for the loop to exit unless it is called from
// inside the deadline callback.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	running, firing := t.running, t.firing
	close(t.stop)
	t.mu.Unlock()

	if running && !firing {
		<-t.done
	}
}

func (t *Timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
