package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"safetrip/internal/domain"
	"safetrip/internal/events"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 3 * time.Second
	reconnInterval = 10 * time.Second
)

// Channel is the part of *amqp.Channel the broker publishes through.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// IncidentEvent is the body published for every incident change.
type IncidentEvent struct {
	Type     string           `json:"type"`
	Incident *domain.Incident `json:"incident"`
	At       time.Time        `json:"at"`
}

// IncidentBroker publishes incident changes to a topic exchange. It is an
// events.Sink; trip changes are ignored.
type IncidentBroker struct {
	logger   *slog.Logger
	url      string
	exchange string

	mu           sync.Mutex
	conn         *amqp.Connection
	ch           Channel
	reconnecting bool
	closed       bool
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string, logger *slog.Logger) (*IncidentBroker, error) {
	b := &IncidentBroker{logger: logger, url: url, exchange: exchange}
	if err := b.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return b, nil
}

// NewIncidentBroker publishes through an existing channel.
func NewIncidentBroker(ch Channel, exchange string, logger *slog.Logger) *IncidentBroker {
	return &IncidentBroker{logger: logger, exchange: exchange, ch: ch}
}

func RoutingKey(status domain.IncidentStatus) string {
	return "incident." + string(status)
}

func (b *IncidentBroker) Deliver(ctx context.Context, c events.Change) {
	if c.Kind != events.KindIncident || c.Incident == nil {
		return
	}
	if err := b.Publish(ctx, c.Incident, c.At); err != nil {
		b.logger.Error("publish incident event failed",
			slog.String("incident_id", c.Incident.ID.String()),
			slog.Any("error", err))
	}
}

func (b *IncidentBroker) Publish(ctx context.Context, inc *domain.Incident, at time.Time) error {
	const op = "broker.IncidentBroker.Publish"

	b.mu.Lock()
	ch, conn := b.ch, b.conn
	b.mu.Unlock()

	if ch == nil || (conn != nil && conn.IsClosed()) {
		go b.reconnect()
		return fmt.Errorf("%s: connection is closed", op)
	}

	key := RoutingKey(inc.Status)
	body, err := json.Marshal(IncidentEvent{Type: key, Incident: inc, At: at})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := ch.PublishWithContext(ctx, b.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.logger.Debug("incident event published", slog.String("routing_key", key))
	return nil
}

func (b *IncidentBroker) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return err
	}

	b.mu.Lock()
	b.conn = conn
	b.ch = ch
	b.mu.Unlock()
	return nil
}

func (b *IncidentBroker) reconnect() {
	b.mu.Lock()
	if b.reconnecting || b.closed || b.url == "" {
		b.mu.Unlock()
		return
	}
	b.reconnecting = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.reconnecting = false
		b.mu.Unlock()
	}()

	t := time.NewTicker(reconnInterval)
	defer t.Stop()

	for range t.C {
		b.mu.Lock()
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return
		}

		if err := b.connect(); err != nil {
			b.logger.Warn("rabbitmq reconnect failed", slog.Any("error", err))
			continue
		}
		b.logger.Info("rabbitmq reconnected")
		return
	}
}

func (b *IncidentBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.conn != nil && !b.conn.IsClosed() {
		if err := b.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
