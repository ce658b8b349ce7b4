// Package stats records placement outcomes for operational visibility.
//
// Recording is best-effort: a recorder failure must never fail a placement.
package stats

import (
	"context"
	"time"
)

// Outcome describes one adjudicated placement attempt.
type Outcome struct {
	// UserID is the opaque actor id of the attempt.
	UserID string
	// Accepted reports whether the placement was committed.
	Accepted bool
	// Reason carries the machine-readable rejection code when not accepted.
	Reason string
	// At is when the attempt was adjudicated.
	At time.Time
}

// Recorder consumes placement outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Nop is a Recorder that discards everything.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Outcome) error { return nil }
