package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/ident"
	"github.com/roach88/threadboard/internal/tree"
)

// Comments is the shared forest persistence. Implemented by
// store.CommentStore.
type Comments interface {
	Load(ctx context.Context) comment.Forest
	Save(ctx context.Context, f comment.Forest) error
}

// Drafts is the auxiliary draft slot. Implemented by store.DraftStore.
type Drafts interface {
	Load(ctx context.Context) comment.Draft
	Save(ctx context.Context, d comment.Draft) error
	Clear(ctx context.Context) error
}

// Submission is the raw input of the post form.
type Submission struct {
	Author   string
	Text     string
	ParentID string // empty for a top-level comment
}

// Service is one board context.
//
// Every operation runs under one mutex, so a write and its persistence are
// never interleaved with another operation of the same context. Contexts
// do not coordinate with each other: the last save wins.
type Service struct {
	mu        sync.Mutex
	engine    *tree.Engine
	persisted comment.Forest // last forest known to match the store

	comments Comments
	drafts   Drafts
	ids      ident.Generator
	now      func() time.Time
	logger   *slog.Logger
	events   chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator sets the id source (default ident.UUIDv7Generator).
func WithIDGenerator(g ident.Generator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// WithClock sets the time source (default time.Now).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDrafts enables draft persistence. Without it SaveDraft is a no-op
// and Draft returns a zero draft.
func WithDrafts(d Drafts) Option {
	return func(s *Service) {
		s.drafts = d
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(s *Service) {
		s.events = make(chan Event, n)
	}
}

// New creates a context and loads its forest from comments.
func New(ctx context.Context, comments Comments, opts ...Option) *Service {
	s := &Service{
		comments: comments,
		ids:      ident.UUIDv7Generator{},
		now:      time.Now,
		logger:   slog.Default(),
		events:   make(chan Event, DefaultEventBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}

	f := comments.Load(ctx)
	s.engine = tree.New(f)
	s.persisted = s.engine.Forest()
	return s
}

// Events delivers user-facing notifications. Events are dropped when the
// channel is full.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Submit validates a submission and adds it as a top-level comment or as a
// reply. On success the forest is persisted, the draft cleared and the new
// comment returned.
func (s *Service) Submit(ctx context.Context, sub Submission) (comment.Comment, error) {
	author := strings.TrimSpace(sub.Author)
	text := strings.TrimSpace(sub.Text)
	parentID := strings.TrimSpace(sub.ParentID)

	if author == "" || text == "" {
		s.emit(KindRejected, LevelError, "Please fill in all required fields!")
		return comment.Comment{}, &Error{Code: CodeValidation, Message: "author and text are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := comment.New(s.ids.Generate(), author, text, s.now(), parentID)
	if parentID == "" {
		s.engine.AddTopLevel(c)
	} else if !s.engine.AddReply(parentID, c) {
		s.emit(KindRejected, LevelError, "The comment you are replying to no longer exists.")
		return comment.Comment{}, &Error{
			Code:    CodeParentNotFound,
			Message: fmt.Sprintf("no comment with id %q", parentID),
		}
	}

	if err := s.persistLocked(ctx, "post comment"); err != nil {
		return comment.Comment{}, err
	}

	if s.drafts != nil {
		if err := s.drafts.Clear(ctx); err != nil {
			s.logger.Warn("draft not cleared", "error", err)
		}
	}

	s.logger.Debug("comment posted", "id", c.ID, "parent", parentID)
	s.emit(KindPosted, LevelSuccess, "Comment posted successfully!")
	return c, nil
}

// ClearAll removes every comment in this context and in the store.
// Callers are responsible for confirming with the user first.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Clear()
	if err := s.persistLocked(ctx, "clear comments"); err != nil {
		return err
	}
	s.emit(KindCleared, LevelInfo, "All comments cleared!")
	return nil
}

// Refresh reloads the forest from the store, discarding the local view.
// The read happens under the same lock as Submit, so a concurrent post
// is either in the reloaded forest or applied on top of it.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(s.comments.Load(ctx))
	s.emit(KindRefreshed, LevelInfo, "Comments refreshed!")
}

// Forest returns a deep copy of the current forest.
func (s *Service) Forest() comment.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Forest()
}

// Reload reads the store through load and replaces the local forest when
// stale reports it out of date; a nil stale always replaces. It is how a
// sync monitor applies another context's writes, wholesale and without
// merging. Replacing with identical content emits no event. The read and
// the replace form one critical section with Submit and ClearAll.
//
// It returns the forests that were compared and whether the local content
// changed.
func (s *Service) Reload(
	ctx context.Context,
	load func(context.Context) comment.Forest,
	stale func(local, stored comment.Forest) bool,
) (local, stored comment.Forest, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local = s.engine.Forest()
	stored = load(ctx)
	if stale != nil && !stale(local, stored) {
		return local, stored, false
	}
	if changed = s.replaceLocked(stored); changed {
		s.emit(KindSynced, LevelInfo, "Comments updated from another session.")
	}
	return local, stored, changed
}

// ParentOptions lists the comments that can be replied to.
func (s *Service) ParentOptions() []tree.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ParentOptions()
}

// ReplyTarget looks up the comment a reply is about to be written to.
func (s *Service) ReplyTarget(id string) (comment.Comment, error) {
	s.mu.Lock()
	c, ok := s.engine.Find(id)
	s.mu.Unlock()

	if !ok {
		return comment.Comment{}, &Error{
			Code:    CodeParentNotFound,
			Message: fmt.Sprintf("no comment with id %q", id),
		}
	}
	s.emit(KindReplyTarget, LevelInfo, "Replying to "+c.Author)
	return c, nil
}

// WelcomeAuthor and WelcomeText make up the comment SeedWelcome posts.
const (
	WelcomeAuthor = "Discussion Board"
	WelcomeText   = "Welcome to the Live Discussion Board! This is where you can share your thoughts and engage with others. Your comments are saved locally and will persist across sessions."
)

// SeedWelcome posts the welcome comment when the board is empty. It
// reports whether it posted.
func (s *Service) SeedWelcome(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.Len() > 0 {
		return false, nil
	}
	now := s.now()
	id := fmt.Sprintf("welcome-%d", now.UnixMilli())
	s.engine.AddTopLevel(comment.New(id, WelcomeAuthor, WelcomeText, now, ""))
	if err := s.persistLocked(ctx, "seed welcome"); err != nil {
		return false, err
	}
	s.logger.Info("welcome comment seeded", "id", id)
	return true, nil
}

// SaveDraft stores the unfinished post.
func (s *Service) SaveDraft(ctx context.Context, d comment.Draft) error {
	if s.drafts == nil {
		return nil
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return storageError("save draft", err)
	}
	return nil
}

// ClearDraft discards the unfinished post.
func (s *Service) ClearDraft(ctx context.Context) error {
	if s.drafts == nil {
		return nil
	}
	if err := s.drafts.Clear(ctx); err != nil {
		return storageError("clear draft", err)
	}
	return nil
}

// Draft returns the unfinished post, or a zero draft.
func (s *Service) Draft(ctx context.Context) comment.Draft {
	if s.drafts == nil {
		return comment.Draft{}
	}
	return s.drafts.Load(ctx)
}

// persistLocked saves the current forest. On failure the forest is rolled
// back to the last persisted snapshot and an error event is emitted.
func (s *Service) persistLocked(ctx context.Context, op string) error {
	f := s.engine.Forest()
	if err := s.comments.Save(ctx, f); err != nil {
		s.engine.Replace(s.persisted)
		be := storageError(op, err)
		s.logger.Warn("save failed, rolled back", "op", op, "code", be.Code, "error", err)
		s.emit(KindStorage, LevelError, storageMessage(be.Code))
		return be
	}
	s.persisted = f
	return nil
}

// replaceLocked installs f as both the local and the persisted forest and
// reports whether the local content changed.
func (s *Service) replaceLocked(f comment.Forest) bool {
	before := s.engine.Forest()
	s.engine.Replace(f)
	s.persisted = s.engine.Forest()
	return !sameContent(before, s.persisted)
}

// sameContent compares forests by digest. A forest that cannot be
// digested counts as different.
func sameContent(a, b comment.Forest) bool {
	da, err := comment.Digest(a)
	if err != nil {
		return false
	}
	db, err := comment.Digest(b)
	if err != nil {
		return false
	}
	return da == db
}

func storageMessage(code Code) string {
	if code == CodeQuotaExceeded {
		return "Storage is full. Your change was not saved."
	}
	return "Storage is unavailable. Your change was not saved."
}
