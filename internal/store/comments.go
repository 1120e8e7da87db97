package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/notify"
)

// DefaultCommentsKey is the slot holding the serialized forest.
const DefaultCommentsKey = "discussionComments"

// CommentStore reads and writes the whole forest as one blob.
// It is the sole source of truth shared by every board context.
type CommentStore struct {
	slots  Slots
	key    string
	bus    notify.Broadcaster
	origin string
	logger *slog.Logger
}

// CommentStoreOption configures a CommentStore.
type CommentStoreOption func(*CommentStore)

// WithCommentsKey overrides DefaultCommentsKey.
func WithCommentsKey(key string) CommentStoreOption {
	return func(s *CommentStore) {
		s.key = key
	}
}

// WithBroadcaster publishes a Change to bus after every Save. origin
// identifies the owning context so its own subscription is skipped.
func WithBroadcaster(bus notify.Broadcaster, origin string) CommentStoreOption {
	return func(s *CommentStore) {
		s.bus = bus
		s.origin = origin
	}
}

// WithLogger sets the logger for soft failures.
func WithLogger(logger *slog.Logger) CommentStoreOption {
	return func(s *CommentStore) {
		s.logger = logger
	}
}

// NewCommentStore creates a comment store over slots.
func NewCommentStore(slots Slots, opts ...CommentStoreOption) *CommentStore {
	s := &CommentStore{
		slots:  slots,
		key:    DefaultCommentsKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot key.
func (s *CommentStore) Key() string {
	return s.key
}

// Origin returns the context identifier attached to published changes.
func (s *CommentStore) Origin() string {
	return s.origin
}

// Load deserializes the forest. It never fails: an absent slot, an
// unreadable backend or a corrupt blob all yield an empty forest, and the
// latter two are logged.
func (s *CommentStore) Load(ctx context.Context) comment.Forest {
	slot, ok, err := s.slots.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("comment store unreadable, using empty forest", "key", s.key, "error", err)
		return comment.Forest{}
	}
	if !ok {
		return comment.Forest{}
	}

	f, err := unmarshalForest(slot.Value)
	if err != nil {
		s.logger.Warn("comment store corrupt, using empty forest",
			"key", s.key,
			"revision", slot.Revision,
			"error", err,
		)
		return comment.Forest{}
	}
	return f
}

// Save overwrites the slot with f and then notifies the other contexts.
// The caller keeps its own view up to date; it must not wait for its own
// notification, which it never receives.
func (s *CommentStore) Save(ctx context.Context, f comment.Forest) error {
	value, err := marshalForest(f)
	if err != nil {
		return fmt.Errorf("save comments: %w", err)
	}

	slot, err := s.slots.Set(ctx, s.key, value)
	if err != nil {
		return fmt.Errorf("save comments: %w", err)
	}
	s.logger.Debug("comments saved", "key", s.key, "revision", slot.Revision, "bytes", len(value))

	if s.bus != nil {
		s.bus.Publish(notify.Change{
			Key:      s.key,
			Value:    value,
			Revision: slot.Revision,
			Origin:   s.origin,
		})
	}
	return nil
}

// Clear persists an empty forest. Other contexts are notified like any Save.
func (s *CommentStore) Clear(ctx context.Context) error {
	return s.Save(ctx, comment.Forest{})
}
