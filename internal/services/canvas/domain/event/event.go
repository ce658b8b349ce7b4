// Package event defines the immutable placement event at the heart of the
// canvas journal.
package event

import (
	"strings"
	"time"

	apperrors "github.com/GusEh06/pixel-battle-lite/internal/platform/errors"
)

// Placement represents one pixel placement in the append-only journal.
//
// Placements are facts: they are never mutated or deleted. The current canvas
// is always derived from the journal, never stored directly.
type Placement struct {
	// Seq is the journal sequence number, assigned by storage on append.
	// It is a total order across all placements and the authoritative
	// tiebreaker when timestamps collide.
	Seq uint64
	// X and Y are zero-based canvas coordinates.
	X int
	Y int
	// Color is the canonical pixel color: "#" followed by 6 uppercase hex digits.
	Color string
	// UserID is the opaque identifier of the actor. The service trusts it;
	// identity verification happens upstream.
	UserID string
	// CreatedAt is the UTC append time, assigned by storage.
	CreatedAt time.Time
}

// Coord addresses one canvas cell.
type Coord struct {
	X int
	Y int
}

// NormalizeColor validates a wire color and returns its canonical form:
// "#" plus exactly 6 hex digits, uppercased. Input hex digits are
// case-insensitive.
func NormalizeColor(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if len(value) != 7 || value[0] != '#' {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidColor,
			"color must be # followed by 6 hex digits",
			map[string]string{"received": raw})
	}
	for i := 1; i < len(value); i++ {
		if !isHexDigit(value[i]) {
			return "", apperrors.WithMetadata(apperrors.CodeInvalidColor,
				"color must be # followed by 6 hex digits",
				map[string]string{"received": raw})
		}
	}
	return "#" + strings.ToUpper(value[1:]), nil
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// Newer reports whether a supersedes b at the same coordinate. Seq is
// authoritative; the timestamp is advisory only and never consulted.
func Newer(a, b Placement) bool {
	return a.Seq > b.Seq
}
