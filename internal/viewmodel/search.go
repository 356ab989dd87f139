// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package viewmodel

import (
	"context"
	"strings"
	"sync"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/store"
)

// HistoryStore records submitted search queries.
type HistoryStore interface {
	AddSearch(ctx context.Context, scope store.Scope, query string) error
	SearchHistory(ctx context.Context, scope store.Scope) ([]string, error)
	ClearSearchHistory(ctx context.Context, scope store.Scope) error
}

// Search holds the search text of one screen.
type Search[T any] struct {
	scope   store.Scope
	history HistoryStore
	fields  func(T) []filter.Field

	mu   sync.RWMutex
	text string
}

// NewSearch creates a Search for scope. history may be nil.
func NewSearch[T any](scope store.Scope, history HistoryStore, fields func(T) []filter.Field) *Search[T] {
	return &Search[T]{scope: scope, history: history, fields: fields}
}

// Scope returns the history scope.
func (s *Search[T]) Scope() store.Scope { return s.scope }

// Text returns the current search text.
func (s *Search[T]) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// SetText updates the search text without recording it.
func (s *Search[T]) SetText(q string) {
	s.mu.Lock()
	s.text = q
	s.mu.Unlock()
}

// Submit sets the search text and records it in the history when it is
// not blank.
func (s *Search[T]) Submit(ctx context.Context, q string) error {
	s.SetText(q)
	if strings.TrimSpace(q) == "" || s.history == nil {
		return nil
	}
	return s.history.AddSearch(ctx, s.scope, q)
}

// Clear resets the search text.
func (s *Search[T]) Clear() { s.SetText("") }

// Apply filters items by the current search text.
func (s *Search[T]) Apply(items []T) []T {
	return filter.Filter(items, s.Text(), s.fields)
}

// History returns the recorded queries, newest first.
func (s *Search[T]) History(ctx context.Context) ([]string, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.SearchHistory(ctx, s.scope)
}

// ClearHistory removes all recorded queries of the scope.
func (s *Search[T]) ClearHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	return s.history.ClearSearchHistory(ctx, s.scope)
}

// View returns the filtered data of a resource state.
func View[T any](st State[[]T], search *Search[T]) []T {
	if search == nil {
		return st.Data
	}
	return search.Apply(st.Data)
}
