package store

import (
	"context"
	"fmt"
	"time"
)

// Set replaces the value of key in a single UPSERT, so readers in other
// processes see either the old or the new blob and never a mix.
func (s *Store) Set(ctx context.Context, key, value string) (Slot, error) {
	if err := checkQuota(s.quota, value); err != nil {
		return Slot{}, fmt.Errorf("set slot %q (%d bytes, quota %d): %w", key, len(value), s.quota, err)
	}

	now := s.now().UTC()
	var rev int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO slots (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = slots.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision
	`, key, value, now.Format(time.RFC3339Nano)).Scan(&rev)
	if err != nil {
		return Slot{}, fmt.Errorf("set slot %q: %w: %w", key, ErrUnavailable, err)
	}

	return Slot{Key: key, Value: value, Revision: rev, UpdatedAt: now}, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete slot %q: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}
