package profile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"

	"safetrip/internal/api/handlers/http/profile"
	mock_profile "safetrip/internal/api/handlers/http/profile/mocks"
	"safetrip/internal/domain"
	"safetrip/internal/middleware"
	"safetrip/pkg/e"
)

const owner = "user-1"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func authed(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middleware.WithUserID(ctx, owner))
}

func TestProfileUpsert_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_profile.NewMockProfile(ctrl)
	h := profile.NewHandler(newTestLogger(), svc)

	req := domain.UpsertProfileRequest{Name: "Asha", Phone: "+15550000001"}
	svc.EXPECT().UpsertProfile(gomock.Any(), owner, req).Return(&domain.User{ID: owner, Name: "Asha", Phone: req.Phone}, nil).Times(1)

	rr := httptest.NewRecorder()
	h.ProfileUpsert(rr, authed(httptest.NewRequest(http.MethodPut, "/api/v1/me", bytes.NewBufferString(`{"name":"Asha","phone":"+15550000001"}`)), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestProfileUpsert_BadPhone_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := profile.NewHandler(newTestLogger(), mock_profile.NewMockProfile(ctrl))

	rr := httptest.NewRecorder()
	h.ProfileUpsert(rr, authed(httptest.NewRequest(http.MethodPut, "/api/v1/me", bytes.NewBufferString(`{"name":"Asha","phone":"call me"}`)), nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestGuardianAdd_Duplicate_409(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_profile.NewMockProfile(ctrl)
	h := profile.NewHandler(newTestLogger(), svc)

	g := domain.Guardian{Name: "Mom", Phone: "+15550000002"}
	svc.EXPECT().AddGuardian(gomock.Any(), owner, g).Return(nil, e.ErrConflict).Times(1)

	rr := httptest.NewRecorder()
	h.GuardianAdd(rr, authed(httptest.NewRequest(http.MethodPost, "/api/v1/me/guardians", bytes.NewBufferString(`{"name":"Mom","phone":"+15550000002"}`)), nil))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected %d got %d", http.StatusConflict, rr.Code)
	}
}

func TestGuardianRemove_UnescapesPhone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_profile.NewMockProfile(ctrl)
	h := profile.NewHandler(newTestLogger(), svc)

	svc.EXPECT().RemoveGuardian(gomock.Any(), owner, "+15550000002").Return(nil, nil).Times(1)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/me/guardians/%2B15550000002", nil)
	h.GuardianRemove(rr, authed(req, map[string]string{"phone": "%2B15550000002"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var got map[string][]domain.Guardian
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["guardians"] == nil {
		t.Fatalf("expected empty guardians array, got %s", rr.Body.String())
	}
}

func TestPushTokenRegister_NoContent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_profile.NewMockProfile(ctrl)
	h := profile.NewHandler(newTestLogger(), svc)

	svc.EXPECT().RegisterPushToken(gomock.Any(), owner, "fcm-token-123").Return(nil).Times(1)

	rr := httptest.NewRecorder()
	h.PushTokenRegister(rr, authed(httptest.NewRequest(http.MethodPost, "/api/v1/me/push-tokens", bytes.NewBufferString(`{"token":"fcm-token-123"}`)), nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected %d got %d", http.StatusNoContent, rr.Code)
	}
}
