package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"safetrip/internal/domain"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Reports interface {
	Create(ctx context.Context, req domain.CreateReportRequest) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
}

type Handler struct {
	logger  *slog.Logger
	Reports Reports
}

func NewHandler(logger *slog.Logger, reports Reports) *Handler {
	return &Handler{logger: logger, Reports: reports}
}

func (h *Handler) ReportCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CreateReportRequest
	if !h.bind(w, r, &req) {
		return
	}

	report, err := h.Reports.Create(r.Context(), req)
	if err != nil {
		l.Error("Create report failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, report)
}

// ReportList supports ?category=&lat=&lng=&radius= (radius in metres).
func (h *Handler) ReportList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.ReportFilter
	if c := q.Get("category"); c != "" {
		cat, ok := domain.ParseReportCategory(c)
		if !ok {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
			return
		}
		filter.Category = &cat
	}

	var ok bool
	if filter.Lat, ok = h.queryFloat(w, q.Get("lat"), "lat"); !ok {
		return
	}
	if filter.Lng, ok = h.queryFloat(w, q.Get("lng"), "lng"); !ok {
		return
	}
	if filter.RadiusM, ok = h.queryFloat(w, q.Get("radius"), "radius"); !ok {
		return
	}

	reports, err := h.Reports.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) queryFloat(w http.ResponseWriter, raw, name string) (*float64, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return nil, false
	}
	return &v, true
}
