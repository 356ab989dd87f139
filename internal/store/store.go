// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists receiver profiles, preferences and search histories
// in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/persistence/sqlite"
	"github.com/rs/zerolog"
)

var (
	ErrDeviceNotFound   = errors.New("store: device not found")
	ErrNoCurrentDevice  = errors.New("store: no current device selected")
	ErrDuplicateDevice  = errors.New("store: a device with this name already exists")
	ErrInvalidDevice    = errors.New("store: invalid device")
	ErrInvalidScope     = errors.New("store: unknown search history scope")
	ErrInvalidPrefValue = errors.New("store: invalid preference value")
)

// DefaultHistoryLimit is the number of searches kept per scope.
const DefaultHistoryLimit = 10

// Options configures Open.
type Options struct {
	HistoryLimit int
	SQLite       sqlite.Config
}

// Store is the local database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time

	mu           sync.RWMutex
	historyLimit int
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	cfg := opts.SQLite
	if cfg == (sqlite.Config{}) {
		cfg = sqlite.DefaultConfig()
	}
	db, err := sqlite.Open(ctx, path, cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:           db,
		logger:       xglog.WithComponent("store"),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
	}
	s.SetHistoryLimit(opts.HistoryLimit)

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetHistoryLimit changes the per-scope search history cap. Values < 1 keep
// the current limit. Existing histories shrink on their next insert.
func (s *Store) SetHistoryLimit(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.historyLimit = n
	s.mu.Unlock()
}

func (s *Store) limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLimit
}

// Check runs an integrity check on the live database.
func (s *Store) Check(ctx context.Context, full bool) ([]string, error) {
	return sqlite.CheckIntegrity(ctx, s.db, full)
}

func (s *Store) transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
