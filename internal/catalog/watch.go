package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay between the last change of a fixture and
// its reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Memory catalog when its fixture file changes.
type Watcher struct {
	path     string
	memory   *Memory
	debounce time.Duration
	logger   *slog.Logger
	onReload func(n int, err error)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the reload delay.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// OnReload registers fn to be called after every reload attempt with the
// number of products loaded or the error that kept the old contents.
func OnReload(fn func(n int, err error)) WatchOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher that reloads path into m.
func NewWatcher(path string, m *Memory, opts ...WatchOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		memory:   m,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Run watches until ctx is done. The parent directory is watched rather
// than the file so that editors replacing the file are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Info("catalog: watching fixture", "path", w.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog: watch error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	products, err := ReadFile(w.path)
	if err != nil {
		w.logger.Warn("catalog: reload failed, keeping previous products",
			"path", w.path, "error", err)
	} else {
		w.memory.Replace(products)
		w.logger.Info("catalog: fixture reloaded", "path", w.path, "products", len(products))
	}
	if w.onReload != nil {
		w.onReload(len(products), err)
	}
}
