// Package watch re-runs a callback when a file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a single file. The containing directory is watched and
// events are filtered by name.
type Watcher struct {
	file     string
	callback func() error
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for file. It does nothing until Run is called.
func NewWatcher(file string, callback func() error, logger *slog.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		file:     absPath,
		callback: callback,
		watcher:  watcher,
		logger:   logger,
		debounce: DefaultDebounce,
	}, nil
}

// Run delivers debounced change notifications until ctx is cancelled.
// Callback errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if path, err := filepath.Abs(event.Name); err != nil || path != w.file {
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.Info("file changed", "file", w.file)
			if err := w.callback(); err != nil {
				w.logger.Error("watch callback failed", "file", w.file, "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
