package stats

import (
	"context"
	"sync"
)

// Counters holds accepted/denied tallies.
type Counters struct {
	Accepted int64
	Denied   int64
}

// MemoryRecorder tallies outcomes in process memory. It does no expiration;
// it is intended for tests, development, and single-node deployments.
type MemoryRecorder struct {
	mu       sync.Mutex
	total    Counters
	byReason map[string]int64
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byReason: make(map[string]int64)}
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(_ context.Context, outcome Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if outcome.Accepted {
		r.total.Accepted++
		return nil
	}
	r.total.Denied++
	if outcome.Reason != "" {
		r.byReason[outcome.Reason]++
	}
	return nil
}

// Totals returns the cumulative counters.
func (r *MemoryRecorder) Totals() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// DeniedByReason returns a copy of the per-reason denial tallies.
func (r *MemoryRecorder) DeniedByReason() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]int64, len(r.byReason))
	for reason, count := range r.byReason {
		copied[reason] = count
	}
	return copied
}
