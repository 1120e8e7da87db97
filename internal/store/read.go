package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Get returns the slot stored under key.
func (s *Store) Get(ctx context.Context, key string) (Slot, bool, error) {
	var (
		slot      = Slot{Key: key}
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT value, revision, updated_at
		FROM slots
		WHERE key = ?
	`, key).Scan(&slot.Value, &slot.Revision, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, fmt.Errorf("get slot %q: %w: %w", key, ErrUnavailable, err)
	}

	if updatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			slot.UpdatedAt = t
		}
	}
	return slot, true, nil
}
