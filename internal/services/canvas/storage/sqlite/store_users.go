package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/storage"
)

// GetOrCreateUser returns the registry record for userID, creating it when
// absent. The insert-if-absent primitive makes concurrent first contacts for
// the same user converge on a single record.
func (s *Store) GetOrCreateUser(ctx context.Context, userID string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.UserRecord{}, fmt.Errorf("user id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, username, total_pixels_placed, created_at)
VALUES (?, '', 0, ?)
ON CONFLICT(id) DO NOTHING`,
		userID, toMillis(s.clock().UTC().Truncate(time.Millisecond)),
	); err != nil {
		return storage.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// RecordAcceptedPlacement increments the user's pixel counter by exactly one
// and stamps the last placement time. The row is created first when missing
// so the counter never silently drops an accepted placement.
func (s *Store) RecordAcceptedPlacement(ctx context.Context, userID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO users (id, username, total_pixels_placed, created_at)
VALUES (?, '', 0, ?)
ON CONFLICT(id) DO NOTHING`,
		userID, toMillis(at),
	); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
UPDATE users
SET total_pixels_placed = total_pixels_placed + 1,
    last_pixel_at = ?
WHERE id = ?`,
		toMillis(at), userID,
	)
	if err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("update user stats: expected 1 row, got %d", affected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetUser returns the registry record for userID or storage.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}

	var (
		record      storage.UserRecord
		lastPixelAt sql.NullInt64
		createdAt   int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, username, total_pixels_placed, last_pixel_at, created_at
FROM users
WHERE id = ?`, userID).Scan(
		&record.ID,
		&record.Username,
		&record.TotalPixelsPlaced,
		&lastPixelAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	record.LastPixelAt = fromNullMillis(lastPixelAt)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}
