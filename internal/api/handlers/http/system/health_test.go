package system_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"safetrip/internal/api/handlers/http/system"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSystemHealth_NoChecks(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	system.NewHandler(newTestLogger(), nil).SystemHealth(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
}

func TestSystemHealth_DependencyDown(t *testing.T) {
	t.Parallel()

	checks := map[string]system.Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}

	rr := httptest.NewRecorder()
	system.NewHandler(newTestLogger(), checks).SystemHealth(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected %d got %d", http.StatusServiceUnavailable, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"redis":"down"`) || !strings.Contains(rr.Body.String(), `"postgres":"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
