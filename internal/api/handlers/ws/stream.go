package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"safetrip/internal/domain"
	"safetrip/internal/events"
	"safetrip/internal/middleware"
	"safetrip/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	outBuffer    = 16
)

type Subscriber interface {
	Subscribe(kind events.Kind, id uuid.UUID, fn func(events.Change)) func()
}

type TripReader interface {
	GetTrip(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error)
	View(t *domain.Trip) domain.TripView
}

type IncidentReader interface {
	GetIncident(ctx context.Context, incidentID uuid.UUID) (*domain.Incident, error)
}

// Message is one frame sent to the client. The first frame is the current
// state, the rest follow every change.
type Message struct {
	Kind     events.Kind      `json:"kind"`
	ID       uuid.UUID        `json:"id"`
	Trip     *domain.TripView `json:"trip,omitempty"`
	Incident *domain.Incident `json:"incident,omitempty"`
	At       time.Time        `json:"at"`
}

type Handler struct {
	logger    *slog.Logger
	hub       Subscriber
	trips     TripReader
	incidents IncidentReader
	upgrader  websocket.Upgrader
}

func NewHandler(logger *slog.Logger, hub Subscriber, trips TripReader, incidents IncidentReader) *Handler {
	return &Handler{
		logger:    logger,
		hub:       hub,
		trips:     trips,
		incidents: incidents,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// TripStream streams changes of one trip to its owner.
func (h *Handler) TripStream(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		_ = render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := h.trips.GetTrip(r.Context(), owner, id)
	if err != nil {
		render.Error(w, err)
		return
	}

	view := h.trips.View(trip)
	first := Message{Kind: events.KindTrip, ID: id, Trip: &view, At: time.Now().UTC()}
	h.stream(w, r, events.KindTrip, id, first, func(c events.Change) Message {
		m := Message{Kind: c.Kind, ID: c.ID, At: c.At}
		if c.Trip != nil {
			v := h.trips.View(c.Trip)
			m.Trip = &v
		}
		return m
	})
}

// IncidentStream streams changes of one incident to anyone holding its id.
func (h *Handler) IncidentStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.incidents.GetIncident(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	first := Message{Kind: events.KindIncident, ID: id, Incident: inc, At: time.Now().UTC()}
	h.stream(w, r, events.KindIncident, id, first, func(c events.Change) Message {
		return Message{Kind: c.Kind, ID: c.ID, Incident: c.Incident, At: c.At}
	})
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, kind events.Kind, id uuid.UUID, first Message, toMessage func(events.Change) Message) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	l := h.logger.With(slog.String("kind", string(kind)), slog.String("id", id.String()))

	out := make(chan Message, outBuffer)
	unsubscribe := h.hub.Subscribe(kind, id, func(c events.Change) {
		select {
		case out <- toMessage(c):
		default:
			l.Warn("websocket client too slow, change dropped")
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	if err := write(conn, first); err != nil {
		return
	}
	l.Debug("websocket stream opened")

	for {
		select {
		case <-done:
			l.Debug("websocket stream closed")
			return
		case m := <-out:
			if err := write(conn, m); err != nil {
				l.Debug("websocket write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func write(conn *websocket.Conn, m Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = render.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
