// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Scope names a screen that keeps its own search history.
type Scope string

const (
	ScopeTV     Scope = "tv"
	ScopeRadio  Scope = "radio"
	ScopeEPG    Scope = "epg"
	ScopeMovies Scope = "movies"
	ScopeTimers Scope = "timers"
)

// Scopes lists every valid scope.
func Scopes() []Scope {
	return []Scope{ScopeTV, ScopeRadio, ScopeEPG, ScopeMovies, ScopeTimers}
}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	sc := Scope(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Scopes() {
		if v == sc {
			return sc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// AddSearch records a query as the most recent of its scope. Blank queries
// are ignored; a query already present (case-insensitively) moves to the
// front; the oldest entries beyond the limit are dropped.
func (s *Store) AddSearch(ctx context.Context, scope Scope, query string) error {
	if _, err := ParseScope(string(scope)); err != nil {
		return err
	}
	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return nil
	}
	key := strings.ToLower(q)
	limit := s.limit()

	return s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM search_history WHERE scope = ? AND query_key = ?", scope, key); err != nil {
			return fmt.Errorf("dedup search: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO search_history (scope, query, query_key) VALUES (?, ?, ?)", scope, q, key); err != nil {
			return fmt.Errorf("insert search: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_history WHERE scope = ? AND id NOT IN (
			SELECT id FROM search_history WHERE scope = ? ORDER BY id DESC LIMIT ?)`, scope, scope, limit); err != nil {
			return fmt.Errorf("trim search history: %w", err)
		}
		return nil
	})
}

// SearchHistory returns the scope's queries, newest first.
func (s *Store) SearchHistory(ctx context.Context, scope Scope) ([]string, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT query FROM search_history WHERE scope = ? ORDER BY id DESC LIMIT ?", scope, s.limit())
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]string, 0)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// RemoveSearch deletes one query (case-insensitive) from a scope.
func (s *Store) RemoveSearch(ctx context.Context, scope Scope, query string) error {
	if _, err := ParseScope(string(scope)); err != nil {
		return err
	}
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if _, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE scope = ? AND query_key = ?", scope, key); err != nil {
		return fmt.Errorf("remove search: %w", err)
	}
	return nil
}

// ClearSearchHistory empties a scope.
func (s *Store) ClearSearchHistory(ctx context.Context, scope Scope) error {
	if _, err := ParseScope(string(scope)); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE scope = ?", scope); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}
