package notify

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	fsnotify "gopkg.in/fsnotify.v1"
)

// FileWatcher turns writes to a SQLite database file into Changes.
//
// Other processes sharing the database cannot reach this process's Hub, but
// their writes land in the database file or its write-ahead log. The
// watcher publishes a Change with no value and no origin for every watched
// key whenever either file is written, so every local subscriber reloads.
type FileWatcher struct {
	path    string
	keys    []string
	target  Broadcaster
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewFileWatcher watches the directory holding dbPath and republishes
// writes to target for each of keys.
func NewFileWatcher(dbPath string, target Broadcaster, logger *slog.Logger, keys ...string) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dbPath, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dbPath, err)
	}
	// SQLite replaces and creates the -wal file, so the directory is watched
	// instead of the individual files.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dbPath, err)
	}

	return &FileWatcher{
		path:    abs,
		keys:    keys,
		target:  target,
		watcher: w,
		logger:  logger,
	}, nil
}

// Run forwards file events until ctx is cancelled or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("store file changed", "file", ev.Name, "op", ev.Op.String())
			for _, key := range w.keys {
				w.target.Publish(Change{Key: key})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("store file watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops watching. Run returns once the event channel drains.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *FileWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == w.path || name == w.path+"-wal"
}
