// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package viewmodel

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"time"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/metrics"
	"github.com/ManuGH/e2remote/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Refresh after Close.
var ErrClosed = errors.New("viewmodel: resource closed")

// State is a snapshot of a Resource.
type State[T any] struct {
	Status     Status
	Data       T
	Err        error
	Key        string
	UpdatedAt  time.Time
	Generation uint64
}

// Fetcher loads the data for key.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Resource owns one fetched value. A Refresh for a different key cancels the
// fetch in flight; a Refresh for the key already being fetched joins it.
type Resource[T any] struct {
	name   string
	fetch  Fetcher[T]
	logger zerolog.Logger
	now    func() time.Time
	group  singleflight.Group
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State[T]
	key      string
	gen      uint64
	ran      uint64
	inflight bool
	fctx     context.Context
	cancel   context.CancelFunc
	subs     map[int]chan State[T]
	nextSub  int
	closed   bool
}

// NewResource creates a Resource in the loading state.
func NewResource[T any](name string, fetch Fetcher[T]) *Resource[T] {
	return &Resource[T]{
		name:   name,
		fetch:  fetch,
		logger: xglog.WithComponent("viewmodel"),
		now:    time.Now,
		subs:   make(map[int]chan State[T]),
	}
}

// State returns the current snapshot.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh fetches key and waits for the result. Returning early because ctx
// ended does not cancel the fetch; only a newer Refresh or Close does. A
// Refresh overtaken by one for another key returns context.Canceled, and
// one cut short by Close returns ErrClosed.
func (r *Resource[T]) Refresh(ctx context.Context, key string) (State[T], error) {
	for {
		gen, ch, err := r.start(ctx, key)
		if err != nil {
			return r.State(), err
		}
		select {
		case res := <-ch:
			st := res.Val.(State[T])
			if st.Generation == gen && st.Status != StatusLoading {
				return st, nil
			}
			r.mu.Lock()
			closed, current, inflight, latest := r.closed, r.key, r.inflight, r.state
			r.mu.Unlock()
			switch {
			case closed:
				return latest, ErrClosed
			case current != key:
				return latest, context.Canceled
			case !inflight:
				return latest, nil
			}
			// A newer fetch for the same key is running; join it.
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// Reload refetches the current key.
func (r *Resource[T]) Reload(ctx context.Context) (State[T], error) {
	r.mu.Lock()
	key := r.key
	r.mu.Unlock()
	return r.Refresh(ctx, key)
}

func (r *Resource[T]) start(ctx context.Context, key string) (uint64, <-chan singleflight.Result, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, nil, ErrClosed
	}
	if !r.inflight || r.key != key {
		if r.cancel != nil {
			r.cancel()
			r.logger.Debug().
				Str(xglog.FieldEvent, "viewmodel.fetch_cancelled").
				Str("resource", r.name).
				Str("key", r.key).
				Msg("superseded fetch cancelled")
		}
		r.gen++
		r.key = key
		r.inflight = true
		r.fctx, r.cancel = context.WithCancel(context.WithoutCancel(ctx))
		r.state.Status = StatusLoading
		r.state.Key = key
		r.state.Generation = r.gen
		r.publishLocked()
	}
	gen := r.gen
	r.mu.Unlock()

	flight := strconv.FormatUint(gen, 10)
	return gen, r.group.DoChan(flight, func() (any, error) {
		return r.run(gen, key), nil
	}), nil
}

func (r *Resource[T]) run(gen uint64, key string) State[T] {
	r.mu.Lock()
	if r.closed || gen != r.gen || r.ran >= gen {
		st := r.state
		r.mu.Unlock()
		return st
	}
	r.ran = gen
	r.wg.Add(1)
	fctx := r.fctx
	r.mu.Unlock()
	defer r.wg.Done()

	fctx, span := telemetry.Tracer("e2remote.viewmodel").Start(fctx, "viewmodel.refresh")
	defer span.End()
	data, err := r.fetch(fctx, key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.closed {
		metrics.RecordRefresh(r.name, "canceled")
		span.SetAttributes(telemetry.RefreshAttributes(r.name, "canceled", 0)...)
		return r.state
	}
	r.inflight = false
	r.cancel()
	r.cancel = nil

	status := ResolveStatus(err)
	next := State[T]{
		Status:     status,
		Err:        err,
		Key:        key,
		UpdatedAt:  r.now(),
		Generation: gen,
	}
	switch {
	case err == nil:
		next.Data = data
	case status != StatusNoDevice && r.state.Key == key:
		// Keep showing the last good data for this key.
		next.Data = r.state.Data
	}
	if err != nil {
		r.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "viewmodel.fetch_failed").
			Str("resource", r.name).
			Str(xglog.FieldStatus, status.String()).
			Msg("fetch failed")
	}
	metrics.RecordRefresh(r.name, status.String())
	span.SetAttributes(telemetry.RefreshAttributes(r.name, status.String(), itemCount(next.Data))...)
	r.state = next
	r.publishLocked()
	return next
}

func itemCount(data any) int {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len()
	case reflect.Invalid:
		return 0
	}
	return 1
}

// Subscribe returns a channel receiving every state change and a function
// to stop. Slow subscribers only see the latest state.
func (r *Resource[T]) Subscribe() (<-chan State[T], func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan State[T], 1)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if sub, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(sub)
			}
		})
	}
}

func (r *Resource[T]) publishLocked() {
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.state
	}
}

// Close cancels any fetch, ends all subscriptions and waits for the fetch
// goroutine to return.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
