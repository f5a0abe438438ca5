package profile

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"safetrip/internal/domain"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Profile interface {
	UpsertProfile(ctx context.Context, userID string, req domain.UpsertProfileRequest) (*domain.User, error)
	Guardians(ctx context.Context, userID string) ([]domain.Guardian, error)
	AddGuardian(ctx context.Context, userID string, g domain.Guardian) ([]domain.Guardian, error)
	RemoveGuardian(ctx context.Context, userID, phone string) ([]domain.Guardian, error)
	RegisterPushToken(ctx context.Context, userID, token string) error
}

type Handler struct {
	logger  *slog.Logger
	Profile Profile
}

func NewHandler(logger *slog.Logger, profile Profile) *Handler {
	return &Handler{logger: logger, Profile: profile}
}

func (h *Handler) ProfileUpsert(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req domain.UpsertProfileRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.Profile.UpsertProfile(r.Context(), owner, req)
	if err != nil {
		h.log(r).Warn("UpsertProfile failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) GuardianList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	guardians, err := h.Profile.Guardians(r.Context(), owner)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeGuardians(w, http.StatusOK, guardians)
}

func (h *Handler) GuardianAdd(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var g domain.Guardian
	if !h.bind(w, r, &g) {
		return
	}

	guardians, err := h.Profile.AddGuardian(r.Context(), owner, g)
	if err != nil {
		h.log(r).Warn("AddGuardian failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	h.writeGuardians(w, http.StatusCreated, guardians)
}

func (h *Handler) GuardianRemove(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	phone, err := url.PathUnescape(chi.URLParam(r, "phone"))
	if err != nil || phone == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid phone"})
		return
	}

	guardians, err := h.Profile.RemoveGuardian(r.Context(), owner, phone)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeGuardians(w, http.StatusOK, guardians)
}

func (h *Handler) PushTokenRegister(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req domain.RegisterPushTokenRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.Profile.RegisterPushToken(r.Context(), owner, req.Token); err != nil {
		h.log(r).Error("RegisterPushToken failed", slog.Any("error", err))
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeGuardians(w http.ResponseWriter, code int, guardians []domain.Guardian) {
	if guardians == nil {
		guardians = []domain.Guardian{}
	}
	h.writeJSON(w, code, map[string]any{"guardians": guardians})
}
