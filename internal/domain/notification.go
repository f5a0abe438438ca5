package domain

import (
	"time"

	"github.com/google/uuid"
)

// PushMessage is the token-addressed payload handed to a push channel.
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// PushJob is a queued push waiting for the push transport.
type PushJob struct {
	IncidentID uuid.UUID   `json:"incident_id"`
	Token      string      `json:"token"`
	Message    PushMessage `json:"message"`
	QueuedAt   time.Time   `json:"queued_at"`
}

// Recipient is a guardian resolved to the push tokens of their account.
type Recipient struct {
	Guardian Guardian
	Tokens   []string
}

type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliveryFailed    DeliveryOutcome = "failed"
	DeliveryNoToken   DeliveryOutcome = "no_token"
)

type DeliveryAttempt struct {
	Guardian Guardian        `json:"guardian"`
	Token    string          `json:"token,omitempty"`
	Channel  string          `json:"channel"`
	Outcome  DeliveryOutcome `json:"outcome"`
	Error    string          `json:"error,omitempty"`
}

type BroadcastReport struct {
	IncidentID   uuid.UUID         `json:"incident_id"`
	FallbackLink string            `json:"fallback_link"`
	Attempts     []DeliveryAttempt `json:"attempts"`
}

// Delivered counts the attempts that reached the channel.
func (r BroadcastReport) Delivered() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome == DeliveryDelivered {
			n++
		}
	}
	return n
}
