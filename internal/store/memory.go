package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process Slots implementation.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	slots    map[string]Slot
	quota    int
	now      func() time.Time
	writeErr error
}

// NewMemory creates an empty in-memory slot backend.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{
		slots: make(map[string]Slot),
		quota: o.quota,
		now:   o.now,
	}
}

// Get returns the slot stored under key.
func (m *Memory) Get(_ context.Context, key string) (Slot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	return s, ok, nil
}

// Set replaces the value of key.
func (m *Memory) Set(_ context.Context, key, value string) (Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return Slot{}, fmt.Errorf("set slot %q: %w: %w", key, ErrUnavailable, m.writeErr)
	}
	if err := checkQuota(m.quota, value); err != nil {
		return Slot{}, fmt.Errorf("set slot %q (%d bytes, quota %d): %w", key, len(value), m.quota, err)
	}

	s := Slot{
		Key:       key,
		Value:     value,
		Revision:  m.slots[key].Revision + 1,
		UpdatedAt: m.now().UTC(),
	}
	m.slots[key] = s
	return s, nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return fmt.Errorf("delete slot %q: %w: %w", key, ErrUnavailable, m.writeErr)
	}
	delete(m.slots, key)
	return nil
}

// FailWrites makes every later Set and Delete fail with ErrUnavailable
// wrapping err. A nil err restores normal behavior.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
