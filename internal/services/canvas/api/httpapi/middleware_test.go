package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMintsAndEchoes(t *testing.T) {
	t.Parallel()

	handler := RequestID(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("minted request id is empty")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "client-supplied" {
		t.Fatalf("request id = %q, want client-supplied", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	handler := CORS(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/pixels", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("passthrough status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestThrottlePerClient(t *testing.T) {
	t.Parallel()

	throttle := NewThrottle(1, 2)
	handler := throttle.Middleware(okHandler())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/canvas/state", nil)
		req.RemoteAddr = "203.0.113.7:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst statuses = %v, want first two OK", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third status = %d, want %d", statuses[2], http.StatusTooManyRequests)
	}

	// A different client gets its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/canvas/state", nil)
	req.RemoteAddr = "198.51.100.9:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestThrottleDisabled(t *testing.T) {
	t.Parallel()

	handler := NewThrottle(0, 0).Middleware(okHandler())
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestThrottleEvictsIdleClients(t *testing.T) {
	t.Parallel()

	throttle := NewThrottle(1, 1)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	throttle.now = func() time.Time { return current }

	throttle.allow("client-a")
	throttle.allow("client-b")
	if len(throttle.limiters) != 2 {
		t.Fatalf("limiters = %d, want 2", len(throttle.limiters))
	}

	current = base.Add(5 * time.Minute)
	throttle.allow("client-a")
	if _, ok := throttle.limiters["client-b"]; ok {
		t.Fatalf("idle client-b still tracked after eviction window")
	}
}
