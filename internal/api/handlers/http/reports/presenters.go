package reports

import (
	"log/slog"
	"net/http"

	"safetrip/internal/middleware"
	"safetrip/internal/render"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	render.Error(w, err)
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	if err := render.JSON(w, code, v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := middleware.BindJSON(w, r, target); err != nil {
		h.handleError(w, err)
		return false
	}
	return true
}
