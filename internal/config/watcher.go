package config

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

const watcherDefaultInterval = 2 * time.Second

// #region watcher
// Watcher polls a toggles file and publishes the latest good copy. A file
// that fails to load is logged and the previous toggles stay in effect.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger

	current atomic.Pointer[Toggles]
	modTime time.Time
}

// NewWatcher loads path once and returns a watcher serving it.
func NewWatcher(path string, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	if interval <= 0 {
		interval = watcherDefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:     path,
		interval: interval,
		logger:   logger.With("component", "toggles_watcher"),
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	w.modTime = info.ModTime()
	w.current.Store(&t)
	return w, nil
}

// Current returns the active toggles.
func (w *Watcher) Current() Toggles {
	return *w.current.Load()
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll reloads the file if its modification time moved. It reports whether
// new toggles were published.
func (w *Watcher) Poll() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("stat toggles failed", "path", w.path, "error", err)
		return false
	}
	if info.ModTime().Equal(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()

	t, err := Load(w.path)
	if err != nil {
		w.logger.Warn("reload toggles failed, keeping previous", "path", w.path, "error", err)
		return false
	}
	w.current.Store(&t)
	w.logger.Info("toggles reloaded", "path", w.path)
	return true
}

// #endregion watcher
