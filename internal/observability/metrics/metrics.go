package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "safetrip_"

var (
	registerOnce sync.Once

	tripsStarted prometheus.Counter
	tripsClosed  *prometheus.CounterVec

	incidentsRaised   *prometheus.CounterVec
	duplicateTriggers *prometheus.CounterVec
	incidentsResolved prometheus.Counter
	escalationLatency prometheus.Histogram

	notificationAttempts *prometheus.CounterVec
	pushRetries          prometheus.Counter
	pushDropped          prometheus.Counter

	eventsDropped *prometheus.CounterVec
)

// Init registers the service metrics with the default registry. Helpers are
// no-ops until Init runs.
func Init() {
	registerOnce.Do(func() {
		tripsStarted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "trips_started_total",
				Help: "Total trips started",
			},
		)
		tripsClosed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "trips_closed_total",
				Help: "Total trips closed by reason",
			},
			[]string{"reason"},
		)

		incidentsRaised = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "incidents_raised_total",
				Help: "Total incidents raised by trigger",
			},
			[]string{"trigger"},
		)
		duplicateTriggers = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "duplicate_triggers_total",
				Help: "Triggers absorbed because the trip was already escalated",
			},
			[]string{"trigger"},
		)
		incidentsResolved = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "incidents_resolved_total",
				Help: "Total incidents resolved",
			},
		)
		escalationLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "escalation_latency_seconds",
				Help:    "Time from trigger to broadcasting incident",
				Buckets: prometheus.DefBuckets,
			},
		)

		notificationAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notification_attempts_total",
				Help: "Notification attempts by channel and outcome",
			},
			[]string{"channel", "outcome"},
		)
		pushRetries = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_retries_total",
				Help: "Push deliveries retried by the push sender",
			},
		)
		pushDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_dropped_total",
				Help: "Push jobs given up after the last retry",
			},
		)

		eventsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_dropped_total",
				Help: "Live-update changes dropped for slow subscribers",
			},
			[]string{"kind"},
		)

		prometheus.MustRegister(
			tripsStarted,
			tripsClosed,
			incidentsRaised,
			duplicateTriggers,
			incidentsResolved,
			escalationLatency,
			notificationAttempts,
			pushRetries,
			pushDropped,
			eventsDropped,
		)
	})
}

func IncTripStarted() {
	if tripsStarted != nil {
		tripsStarted.Inc()
	}
}

// IncTripClosed counts a closed trip; reason is "safe" or "resolved".
func IncTripClosed(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if tripsClosed != nil {
		tripsClosed.WithLabelValues(reason).Inc()
	}
}

func IncIncidentRaised(trigger string) {
	if incidentsRaised != nil {
		incidentsRaised.WithLabelValues(trigger).Inc()
	}
}

func IncDuplicateTrigger(trigger string) {
	if duplicateTriggers != nil {
		duplicateTriggers.WithLabelValues(trigger).Inc()
	}
}

func IncIncidentResolved() {
	if incidentsResolved != nil {
		incidentsResolved.Inc()
	}
}

func ObserveEscalation(d time.Duration) {
	if escalationLatency != nil {
		escalationLatency.Observe(d.Seconds())
	}
}

func IncNotificationAttempt(channel, outcome string) {
	if channel == "" {
		channel = "unknown"
	}
	if notificationAttempts != nil {
		notificationAttempts.WithLabelValues(channel, outcome).Inc()
	}
}

func IncPushRetry() {
	if pushRetries != nil {
		pushRetries.Inc()
	}
}

func IncPushDropped() {
	if pushDropped != nil {
		pushDropped.Inc()
	}
}

func IncEventDropped(kind string) {
	if eventsDropped != nil {
		eventsDropped.WithLabelValues(kind).Inc()
	}
}
