package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads the settings file whenever it changes on disk and delivers
// the parsed result on Changes.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	fsWatcher *fsnotify.Watcher
	changes   chan Settings

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory holding path. The directory is watched
// rather than the file so atomic replace-by-rename is seen.
func NewWatcher(path string, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:      path,
		logger:    logger,
		debounce:  debounce,
		fsWatcher: fsWatcher,
		changes:   make(chan Settings, 1),
	}, nil
}

// Changes returns the channel of reloaded settings.
func (w *Watcher) Changes() <-chan Settings {
	return w.changes
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("settings_watch_error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	// Rename covers editors that write a temp file and move it into place.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *Watcher) reload(ctx context.Context) {
	s, err := Load(w.path)
	if err != nil {
		w.logger.Warn("settings_reload_failed", "path", w.path, "error", err)
		return
	}
	w.logger.Debug("settings_reloaded", "path", w.path)

	// Keep only the newest value if the consumer is behind.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- *s:
	case <-ctx.Done():
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
