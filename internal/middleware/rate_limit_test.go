package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safetrip/internal/middleware"
)

func TestLimit_PerIP(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := middleware.Limit(0.001, 2, time.Minute, newTestLogger())(ok)

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/x/sos", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:5000"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected %d got %d", i, http.StatusNoContent, code)
		}
	}
	if code := do("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected %d got %d", http.StatusTooManyRequests, code)
	}
	if code := do("10.0.0.2:5000"); code != http.StatusNoContent {
		t.Fatalf("other ip should not be limited, got %d", code)
	}
}
