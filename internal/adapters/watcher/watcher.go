package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// DefaultDebounce absorbs editors that write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// FixFunc normalizes the file at path.
type FixFunc func(ctx context.Context, path string) error

// Watcher re-normalizes a file whenever it is written. The parent directory
// is watched because atomic writes replace the file.
type Watcher struct {
	path     string
	fix      FixFunc
	logger   ports.Logger
	debounce time.Duration
}

// New creates a watcher for path.
func New(path string, fix FixFunc, logger ports.Logger, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, fix: fix, logger: logger, debounce: debounce}, nil
}

// Run fixes the file once, then on every change until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	w.logger.Info("File watcher started", "path", w.path)

	w.runFix(ctx)

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped", "path", w.path)
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			w.logger.Debug("File changed, normalizing", "path", w.path)
			w.runFix(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) runFix(ctx context.Context) {
	if err := w.fix(ctx, w.path); err != nil {
		w.logger.Error("Failed to normalize watched file", "path", w.path, "error", err)
	}
}
