package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/notify"
	"github.com/roach88/threadboard/internal/syncmon"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made by other threadboard processes",
		Long: `Keep a board context open and report changes written by other
processes sharing the database.

Changes are picked up from file notifications on the database (when
watch_file is enabled) and from a periodic check every poll_interval.
The periodic check compares comment counts unless staleness is "digest".

Example:
  threadboard watch --db ./board.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootOpts)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, opts *RootOptions) error {
	hub := notify.NewHub()
	defer hub.Close()
	origin := uuid.NewString()

	s, err := openSession(cmd, opts, sessionOptions{bus: hub, origin: origin})
	if err != nil {
		return err
	}
	defer s.Close()

	staleness, err := syncmon.ParseStaleness(s.cfg.Staleness)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if s.cfg.WatchFile {
		w, err := notify.NewFileWatcher(s.cfg.DBPath, hub, s.logger, s.comments.Key())
		if err != nil {
			// Polling still works without file notifications.
			s.logger.Warn("file watching disabled", "error", err)
		} else {
			defer w.Close()
			go func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Error("file watcher stopped", "error", err)
				}
			}()
		}
	}

	mon := syncmon.New(s.svc, s.comments, hub, origin,
		syncmon.WithInterval(s.cfg.PollInterval),
		syncmon.WithStaleness(staleness),
		syncmon.WithLogger(s.logger),
	)

	st := s.svc.Stats(opts.now())
	banner := s.out.Writer
	if s.out.Format == "json" {
		banner = s.out.GetErrWriter()
	}
	fmt.Fprintf(banner, "Watching %s (%d comments). Press Ctrl-C to stop.\n", s.cfg.DBPath, st.Total)
	for _, ev := range s.events() {
		s.out.Update(ev, st)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.svc.Events():
				s.out.Update(ev, s.svc.Stats(opts.now()))
			}
		}
	}()

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "sync monitor error", err)
	}
	s.logger.Info("watch stopped")
	return nil
}
