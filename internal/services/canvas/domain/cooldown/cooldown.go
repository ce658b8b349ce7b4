// Package cooldown decides whether a user may place a pixel yet.
//
// The gate is a pure function: all cooldown state lives in the user registry,
// so a single gate value is safely shared across concurrent requests.
package cooldown

import "time"

// Decision is the outcome of a cooldown check.
type Decision struct {
	// Allowed reports whether the placement may proceed.
	Allowed bool
	// RemainingSeconds is the whole seconds left to wait when denied,
	// rounded up so the wait is never under-reported. Zero when allowed.
	RemainingSeconds int
}

// Gate evaluates the fixed-interval cooldown rule.
type Gate struct {
	duration time.Duration
}

// NewGate creates a gate enforcing the given minimum interval between
// accepted placements. Non-positive durations disable the cooldown.
func NewGate(duration time.Duration) Gate {
	return Gate{duration: duration}
}

// Duration returns the configured cooldown interval.
func (g Gate) Duration() time.Duration {
	return g.duration
}

// Check adjudicates a placement attempt given the user's last accepted
// placement time. lastPixelAt is nil for users who never placed a pixel.
// The boundary is inclusive: at exactly lastPixelAt + duration the attempt
// is allowed.
func (g Gate) Check(lastPixelAt *time.Time, now time.Time) Decision {
	if g.duration <= 0 || lastPixelAt == nil {
		return Decision{Allowed: true}
	}

	elapsed := now.Sub(*lastPixelAt)
	if elapsed >= g.duration {
		return Decision{Allowed: true}
	}

	remaining := g.duration - elapsed
	seconds := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		seconds++
	}
	return Decision{Allowed: false, RemainingSeconds: seconds}
}
