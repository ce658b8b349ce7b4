package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier, minting one when the
// client did not supply its own, and echoes it back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// CORS allows browser clients on any origin to call the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Throttle applies a per-client token bucket in front of the API. This is
// transport backpressure, independent of the placement cooldown.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	rps      rate.Limit
	burst    int

	maxIdle time.Duration
	now     func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle builds a throttle allowing rps requests per second per client
// with the given burst. A non-positive rps disables throttling.
func NewThrottle(rps float64, burst int) *Throttle {
	return &Throttle{
		limiters: make(map[string]*throttleEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		maxIdle:  3 * time.Minute,
		now:      time.Now,
	}
}

// Middleware rejects requests exceeding the client's bucket with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if t == nil || t.rps <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.allow(clientAddr(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.rps, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = now
	t.evictIdle(now)
	return entry.limiter.Allow()
}

// evictIdle drops buckets for clients not seen within maxIdle, bounding the
// map under churny traffic. Caller holds t.mu.
func (t *Throttle) evictIdle(now time.Time) {
	for key, entry := range t.limiters {
		if now.Sub(entry.lastSeen) > t.maxIdle {
			delete(t.limiters, key)
		}
	}
}
