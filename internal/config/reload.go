// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 300 * time.Millisecond

// Holder keeps the active configuration and swaps it atomically on reload.
// A reload that fails to load or validate leaves the current config in place.
type Holder struct {
	mu      sync.RWMutex
	current Config
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- Config
}

// NewHolder creates a holder with an already loaded config.
func NewHolder(initial Config, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reads the config again and applies it if valid.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(prev, next)
	h.notify(next)
	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded")
	return nil
}

// StartWatcher reloads the config whenever its file changes. The directory
// is watched so editors that replace the file are picked up. Without a
// config file this is a no-op.
func (h *Holder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().Str("event", "config.watcher_disabled").Msg("no config file to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str(xglog.FieldPath, path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher, filepath.Clean(path))
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().
						Err(err).
						Str("event", "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}

// Stop closes the watcher if one is running.
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener receives every successfully reloaded config. Sends never
// block; a full channel misses the update.
func (h *Holder) RegisterListener(ch chan<- Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg Config) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str("event", "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(prev, next Config) {
	if prev.Log.Level != next.Log.Level {
		h.logger.Info().Str("old", prev.Log.Level).Str("new", next.Log.Level).Msg("config changed: log.level")
	}
	if prev.Client != next.Client {
		h.logger.Info().
			Dur("timeout", next.Client.Timeout).
			Int("max_retries", next.Client.MaxRetries).
			Float64("rate_limit", next.Client.RateLimit).
			Msg("config changed: client")
	}
	if prev.Search.HistoryLimit != next.Search.HistoryLimit {
		h.logger.Info().
			Int("old", prev.Search.HistoryLimit).
			Int("new", next.Search.HistoryLimit).
			Msg("config changed: search.history_limit")
	}
	if prev.Server.Listen != next.Server.Listen {
		h.logger.Warn().
			Str("old", prev.Server.Listen).
			Str("new", next.Server.Listen).
			Msg("config changed: server.listen (takes effect after restart)")
	}
}
