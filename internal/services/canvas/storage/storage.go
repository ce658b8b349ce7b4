// Package storage defines the persistence contracts for the canvas service:
// an append-only placement journal and a per-user aggregate registry.
package storage

import (
	"context"
	"time"

	apperrors "github.com/GusEh06/pixel-battle-lite/internal/platform/errors"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "never painted" or
// "unknown user" states and storage faults.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// UserRecord captures the per-user aggregate the cooldown gate and stats
// queries read. Exactly one record exists per distinct user id; records are
// created lazily and never deleted.
type UserRecord struct {
	ID                string
	Username          string
	TotalPixelsPlaced int64
	LastPixelAt       *time.Time
	CreatedAt         time.Time
}

// EventStore owns the append-only placement journal and its ordered reads.
type EventStore interface {
	// AppendPlacement inserts one placement, assigning Seq and CreatedAt
	// atomically with the insert. Storage faults propagate; they are never
	// swallowed.
	AppendPlacement(ctx context.Context, x, y int, color, userID string) (event.Placement, error)
	// LatestByCoordinate returns, for every coordinate with at least one
	// placement, the single most recent one. Seq breaks timestamp ties.
	LatestByCoordinate(ctx context.Context) (map[event.Coord]event.Placement, error)
	// EventsAt returns placements at one coordinate, newest first, bounded
	// by limit.
	EventsAt(ctx context.Context, x, y, limit int) ([]event.Placement, error)
	// RecentEvents returns placements across the whole grid, newest first,
	// bounded by limit.
	RecentEvents(ctx context.Context, limit int) ([]event.Placement, error)
	// CountEvents returns the total number of placements in the journal.
	CountEvents(ctx context.Context) (int64, error)
	// CountDistinctUsersSince counts distinct user ids with at least one
	// placement at or after cutoff.
	CountDistinctUsersSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserStore owns the user registry.
type UserStore interface {
	// GetOrCreateUser returns the record for userID, creating it atomically
	// when absent. Concurrent calls for an unseen user yield one record.
	GetOrCreateUser(ctx context.Context, userID string) (UserRecord, error)
	// RecordAcceptedPlacement increments the pixel counter by exactly one
	// and sets the last placement time. It must be called exactly once per
	// accepted placement.
	RecordAcceptedPlacement(ctx context.Context, userID string, at time.Time) error
	// GetUser returns the record for userID or ErrNotFound.
	GetUser(ctx context.Context, userID string) (UserRecord, error)
}

// Store bundles the persistence surface one canvas deployment needs.
type Store interface {
	EventStore
	UserStore
	// Ping verifies the underlying store is reachable.
	Ping(ctx context.Context) error
	// Close releases the storage handle.
	Close() error
}
