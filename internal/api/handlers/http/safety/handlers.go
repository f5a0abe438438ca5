package safety

import (
	"context"
	"log/slog"
	"net/http"

	"safetrip/internal/domain"
	"safetrip/internal/render"

	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Trips interface {
	StartTrip(ctx context.Context, ownerID string, etaMinutes int) (*domain.Trip, error)
	GetTrip(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error)
	ListTrips(ctx context.Context, ownerID string) ([]*domain.Trip, error)
	RecordLocation(ctx context.Context, ownerID string, tripID uuid.UUID, loc domain.Location) (*domain.Trip, error)
	TriggerSOS(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Incident, error)
	MarkSafe(ctx context.Context, ownerID string, tripID uuid.UUID) (*domain.Trip, error)
	View(t *domain.Trip) domain.TripView
}

type Incidents interface {
	GetIncident(ctx context.Context, incidentID uuid.UUID) (*domain.Incident, error)
	ListIncidents(ctx context.Context, ownerID string) ([]*domain.Incident, error)
	ResolveIncident(ctx context.Context, ownerID string, incidentID uuid.UUID) (*domain.Incident, error)
	FallbackLink(ctx context.Context, incidentID uuid.UUID) (domain.FallbackLinkResponse, error)
}

type Handler struct {
	logger    *slog.Logger
	Trips     Trips
	Incidents Incidents
	pages     *render.Renderer
}

func NewHandler(logger *slog.Logger, trips Trips, incidents Incidents, pages *render.Renderer) *Handler {
	return &Handler{
		logger:    logger,
		Trips:     trips,
		Incidents: incidents,
		pages:     pages,
	}
}

func (h *Handler) TripStart(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req domain.StartTripRequest
	if !h.bind(w, r, &req) {
		return
	}

	trip, err := h.Trips.StartTrip(r.Context(), owner, req.ETAMinutes)
	if err != nil {
		l.Error("StartTrip failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	l.Info("trip started", slog.String("trip_id", trip.ID.String()), slog.Int("eta_minutes", trip.ETAMinutes))
	h.writeJSON(w, http.StatusCreated, h.Trips.View(trip))
}

func (h *Handler) TripList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	trips, err := h.Trips.ListTrips(r.Context(), owner)
	if err != nil {
		h.log(r).Error("ListTrips failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	views := make([]domain.TripView, 0, len(trips))
	for _, t := range trips {
		views = append(views, h.Trips.View(t))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"trips": views})
}

func (h *Handler) TripGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	trip, err := h.Trips.GetTrip(r.Context(), owner, id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.Trips.View(trip))
}

func (h *Handler) TripLocation(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var loc domain.Location
	if !h.bind(w, r, &loc) {
		return
	}

	trip, err := h.Trips.RecordLocation(r.Context(), owner, id, loc)
	if err != nil {
		h.log(r).Warn("RecordLocation failed", slog.String("trip_id", id.String()), slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.Trips.View(trip))
}

// TripSOS returns the open incident of the trip. A repeated SOS answers with
// the incident raised first.
func (h *Handler) TripSOS(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.Trips.TriggerSOS(r.Context(), owner, id)
	if err != nil {
		l.Error("TriggerSOS failed", slog.String("trip_id", id.String()), slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	l.Warn("SOS raised", slog.String("trip_id", id.String()), slog.String("incident_id", inc.ID.String()))
	h.writeJSON(w, http.StatusOK, inc)
}

func (h *Handler) TripSafe(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	trip, err := h.Trips.MarkSafe(r.Context(), owner, id)
	if err != nil {
		h.log(r).Warn("MarkSafe failed", slog.String("trip_id", id.String()), slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.Trips.View(trip))
}
