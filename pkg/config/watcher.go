// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is the polling interval for config file changes.
const DefaultWatchInterval = 2 * time.Second

// Watcher polls the configuration file (and its profile overlay) for
// changes and rebuilds the full precedence chain on every reload, so
// environment variables and --set overrides survive a hot reload. It is
// used by long-running modes; one-shot commands load once and exit.
type Watcher struct {
	mu        sync.RWMutex
	cliArgs   []string
	paths     []string
	interval  time.Duration
	modTimes  map[string]time.Time
	current   *Config
	listeners []func(*Config)
	stopCh    chan struct{}
	doneCh    chan struct{}
	logger    *slog.Logger
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for reload diagnostics.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher from the same raw CLI arguments the
// process was started with (--config, --profile/--env, --set). It loads
// the initial configuration and remembers which files to poll; when no
// --config path is present the watcher still serves the initial config
// but never fires a reload.
func NewWatcher(cliArgs []string, opts ...WatcherOption) (*Watcher, error) {
	path, profile, _, err := parseCLIArgs(cliArgs)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cliArgs:  append([]string(nil), cliArgs...),
		interval: DefaultWatchInterval,
		modTimes: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if path != "" {
		w.paths = append(w.paths, path)
		if overlay := profileConfigPath(path, profile); overlay != "" {
			w.paths = append(w.paths, overlay)
		}
	}
	for _, p := range w.paths {
		if info, err := os.Stat(p); err == nil {
			w.modTimes[p] = info.ModTime()
		}
	}

	cfg, err := LoadWithCLI(w.cliArgs)
	if err != nil {
		return nil, err
	}
	w.current = cfg

	return w, nil
}

// Config returns the most recently loaded configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Start begins polling in the background until ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop halts polling and waits for the watch loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.changed() {
				w.reload()
			}
		}
	}
}

// changed detects a modification on any watched file. A file that
// disappears is tolerated; it may be mid-rewrite.
func (w *Watcher) changed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirty := false
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if last, ok := w.modTimes[p]; !ok || info.ModTime().After(last) {
			w.modTimes[p] = info.ModTime()
			dirty = true
		}
	}
	return dirty
}

func (w *Watcher) reload() {
	cfg, err := LoadWithCLI(w.cliArgs)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous config",
			slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	w.current = cfg
	listeners := append([]func(*Config){}, w.listeners...)
	w.mu.Unlock()

	w.logger.Info("config reloaded",
		slog.Int("watched_files", len(w.paths)))

	for _, fn := range listeners {
		fn(cfg)
	}
}
