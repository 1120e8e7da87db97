package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQuotaExceeded is returned when a value is larger than the slot quota.
	ErrQuotaExceeded = errors.New("slot quota exceeded")

	// ErrUnavailable is returned when the backend cannot be read or written.
	ErrUnavailable = errors.New("slot storage unavailable")
)

// Slot is one persisted key/value blob.
type Slot struct {
	Key       string
	Value     string
	Revision  int64
	UpdatedAt time.Time
}

// Slots is the persistence boundary: whole-value reads and writes by key.
//
// Implemented by Store (SQLite) and Memory.
type Slots interface {
	// Get returns the slot and true, or false when the key is absent.
	Get(ctx context.Context, key string) (Slot, bool, error)
	// Set replaces the value and increments the revision.
	Set(ctx context.Context, key, value string) (Slot, error)
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

func checkQuota(quota int, value string) error {
	if quota > 0 && len(value) > quota {
		return ErrQuotaExceeded
	}
	return nil
}
