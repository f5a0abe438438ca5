package safety

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

func (h *Handler) IncidentList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	incidents, err := h.Incidents.ListIncidents(r.Context(), owner)
	if err != nil {
		h.log(r).Error("ListIncidents failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	if incidents == nil {
		incidents = []*domain.Incident{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"incidents": incidents})
}

func (h *Handler) IncidentGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.Incidents.GetIncident(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, inc)
}

func (h *Handler) IncidentResolve(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.Incidents.ResolveIncident(r.Context(), owner, id)
	if err != nil {
		l.Warn("ResolveIncident failed", slog.String("incident_id", id.String()), slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	l.Info("incident resolved", slog.String("incident_id", id.String()))
	h.writeJSON(w, http.StatusOK, inc)
}

func (h *Handler) IncidentFallback(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	resp, err := h.Incidents.FallbackLink(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type incidentPage struct {
	*domain.Incident
	Resolved    bool
	MapsURL     string
	FallbackURL string
}

// IncidentPage is the public share page guardians open from the alert link.
func (h *Handler) IncidentPage(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.Incidents.GetIncident(r.Context(), id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			h.page(w, r, http.StatusNotFound, "not_found", nil)
			return
		}
		l.Error("incident page lookup failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	link, err := h.Incidents.FallbackLink(r.Context(), id)
	if err != nil {
		l.Error("incident page fallback failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}

	data := incidentPage{
		Incident:    inc,
		Resolved:    !inc.Status.Open(),
		FallbackURL: link.URL,
	}
	if inc.LocationKnown {
		data.MapsURL = fmt.Sprintf("https://maps.google.com/?q=%f,%f", inc.Lat, inc.Lng)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Refresh", "30")
	h.page(w, r, http.StatusOK, "incident", data)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	if err := h.pages.Render(w, code, name, data); err != nil {
		h.log(r).Error("render page failed", slog.String("page", name), slog.Any("error", err))
	}
}
