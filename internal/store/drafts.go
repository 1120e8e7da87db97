package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/threadboard/internal/comment"
)

// DefaultDraftKey is the auxiliary slot holding the in-progress post.
const DefaultDraftKey = "discussionFormData"

// DraftStore keeps one Draft so an unfinished post can be resumed.
type DraftStore struct {
	slots  Slots
	key    string
	logger *slog.Logger
}

// NewDraftStore creates a draft store under key; an empty key selects
// DefaultDraftKey.
func NewDraftStore(slots Slots, key string, logger *slog.Logger) *DraftStore {
	if key == "" {
		key = DefaultDraftKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftStore{slots: slots, key: key, logger: logger}
}

// Key returns the slot key.
func (s *DraftStore) Key() string {
	return s.key
}

// Save overwrites the draft.
func (s *DraftStore) Save(ctx context.Context, d comment.Draft) error {
	value, err := marshalDraft(d)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if _, err := s.slots.Set(ctx, s.key, value); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the saved draft, or a zero draft when none is stored or the
// stored one cannot be read.
func (s *DraftStore) Load(ctx context.Context) comment.Draft {
	slot, ok, err := s.slots.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("draft unreadable", "key", s.key, "error", err)
		return comment.Draft{}
	}
	if !ok {
		return comment.Draft{}
	}
	d, err := unmarshalDraft(slot.Value)
	if err != nil {
		s.logger.Warn("draft corrupt", "key", s.key, "error", err)
		return comment.Draft{}
	}
	return d
}

// Clear removes the draft.
func (s *DraftStore) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
