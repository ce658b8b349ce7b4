package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
)

// AppendPlacement inserts one placement, assigning seq and created_at
// atomically with the insert. SQLite serializes writers, so concurrent
// appends cannot duplicate or skip sequence numbers.
func (s *Store) AppendPlacement(ctx context.Context, x, y int, color, userID string) (event.Placement, error) {
	if err := ctx.Err(); err != nil {
		return event.Placement{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Placement{}, fmt.Errorf("storage is not configured")
	}
	if x < 0 || y < 0 {
		return event.Placement{}, fmt.Errorf("coordinates must be non-negative")
	}
	if strings.TrimSpace(color) == "" {
		return event.Placement{}, fmt.Errorf("color is required")
	}
	if strings.TrimSpace(userID) == "" {
		return event.Placement{}, fmt.Errorf("user id is required")
	}

	createdAt := s.clock().UTC().Truncate(time.Millisecond)
	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO placement_events (x, y, color, user_id, created_at)
VALUES (?, ?, ?, ?, ?)`,
		x, y, color, userID, toMillis(createdAt),
	)
	if err != nil {
		return event.Placement{}, fmt.Errorf("append placement: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return event.Placement{}, fmt.Errorf("read placement seq: %w", err)
	}

	return event.Placement{
		Seq:       uint64(seq),
		X:         x,
		Y:         y,
		Color:     color,
		UserID:    userID,
		CreatedAt: createdAt,
	}, nil
}

// LatestByCoordinate computes the latest-per-group reduction over the whole
// journal: for each painted coordinate, the placement with the maximum seq.
// seq is the authoritative tiebreaker; the timestamp is advisory only.
func (s *Store) LatestByCoordinate(ctx context.Context) (map[event.Coord]event.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT e.seq, e.x, e.y, e.color, e.user_id, e.created_at
FROM placement_events e
JOIN (
    SELECT x, y, MAX(seq) AS max_seq
    FROM placement_events
    GROUP BY x, y
) latest ON e.x = latest.x AND e.y = latest.y AND e.seq = latest.max_seq`)
	if err != nil {
		return nil, fmt.Errorf("query latest placements: %w", err)
	}
	defer rows.Close()

	cells := make(map[event.Coord]event.Placement)
	for rows.Next() {
		placement, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		cells[event.Coord{X: placement.X, Y: placement.Y}] = placement
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read latest placements: %w", err)
	}
	return cells, nil
}

// EventsAt returns placements at one coordinate, newest first.
func (s *Store) EventsAt(ctx context.Context, x, y, limit int) ([]event.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, x, y, color, user_id, created_at
FROM placement_events
WHERE x = ? AND y = ?
ORDER BY seq DESC
LIMIT ?`, x, y, limit)
	if err != nil {
		return nil, fmt.Errorf("query placements at (%d,%d): %w", x, y, err)
	}
	defer rows.Close()

	return collectPlacements(rows)
}

// RecentEvents returns placements across the whole grid, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]event.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, x, y, color, user_id, created_at
FROM placement_events
ORDER BY seq DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent placements: %w", err)
	}
	defer rows.Close()

	return collectPlacements(rows)
}

// CountEvents returns the total number of placements in the journal.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM placement_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return count, nil
}

// CountDistinctUsersSince counts distinct user ids with a placement at or
// after cutoff.
func (s *Store) CountDistinctUsersSince(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT user_id)
FROM placement_events
WHERE created_at >= ?`, toMillis(cutoff)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return count, nil
}

func scanPlacement(rows *sql.Rows) (event.Placement, error) {
	var (
		placement event.Placement
		createdAt int64
	)
	if err := rows.Scan(
		&placement.Seq,
		&placement.X,
		&placement.Y,
		&placement.Color,
		&placement.UserID,
		&createdAt,
	); err != nil {
		return event.Placement{}, fmt.Errorf("scan placement row: %w", err)
	}
	placement.CreatedAt = fromMillis(createdAt)
	return placement, nil
}

func collectPlacements(rows *sql.Rows) ([]event.Placement, error) {
	var placements []event.Placement
	for rows.Next() {
		placement, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		placements = append(placements, placement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read placement rows: %w", err)
	}
	return placements, nil
}
