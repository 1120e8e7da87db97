package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/board"
	"github.com/roach88/threadboard/internal/config"
	"github.com/roach88/threadboard/internal/ident"
	"github.com/roach88/threadboard/internal/notify"
	"github.com/roach88/threadboard/internal/store"
)

// session is one board context opened for the duration of a command.
type session struct {
	cfg      *config.Config
	db       *store.Store
	comments *store.CommentStore
	svc      *board.Service
	logger   *slog.Logger
	out      *OutputFormatter
}

// sessionOptions are set by long-running commands only.
type sessionOptions struct {
	bus    notify.Broadcaster
	origin string
}

// openSession resolves configuration, opens the database and loads the
// board. Errors are command errors (exit code 2).
func openSession(cmd *cobra.Command, opts *RootOptions, so sessionOptions) (*session, error) {
	cfg, err := config.Load(config.LoadOptions{File: opts.ConfigFile, EnvFile: opts.EnvFile})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	logger.Debug("opening database", "path", cfg.DBPath)
	db, err := store.Open(cfg.DBPath, store.WithQuota(cfg.QuotaBytes))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	commentOpts := []store.CommentStoreOption{
		store.WithCommentsKey(cfg.CommentsKey),
		store.WithLogger(logger),
	}
	if so.bus != nil {
		commentOpts = append(commentOpts, store.WithBroadcaster(so.bus, so.origin))
	}
	comments := store.NewCommentStore(db, commentOpts...)
	drafts := store.NewDraftStore(db, cfg.DraftKey, logger)

	ids := opts.IDs
	if ids == nil {
		ids = ident.UUIDv7Generator{}
	}
	svc := board.New(commandContext(cmd), comments,
		board.WithIDGenerator(ids),
		board.WithClock(opts.now),
		board.WithDrafts(drafts),
		board.WithLogger(logger),
	)

	s := &session{
		cfg:      cfg,
		db:       db,
		comments: comments,
		svc:      svc,
		logger:   logger,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}

	if cfg.SeedWelcome {
		if _, err := svc.SeedWelcome(commandContext(cmd)); err != nil {
			logger.Warn("welcome comment not seeded", "error", err)
		}
	}
	return s, nil
}

// events drains the notifications raised so far.
func (s *session) events() []board.Event {
	var out []board.Event
	for {
		select {
		case ev := <-s.svc.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
