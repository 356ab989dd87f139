// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/e2remote/internal/viewmodel"
)

// load fetches one resource snapshot through a viewmodel holder so the CLI
// resolves statuses the same way the long-running views do.
func load[T any](ctx context.Context, name, key string, fetch viewmodel.Fetcher[T]) (viewmodel.State[T], error) {
	res := viewmodel.NewResource(name, fetch)
	defer res.Close()
	st, err := res.Refresh(ctx, key)
	if err != nil {
		return st, err
	}
	return st, st.Err
}

// watch refreshes a resource every interval and hands each new state to show.
// times <= 0 keeps going until ctx is done.
func watch[T any](ctx context.Context, name, key string, interval time.Duration, times int, fetch viewmodel.Fetcher[T], show func(viewmodel.State[T]) error) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	res := viewmodel.NewResource(name, fetch)
	defer res.Close()
	updates, unsubscribe := res.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refreshErr := make(chan error, 1)
	refresh := func() {
		go func() {
			if _, err := res.Refresh(ctx, key); err != nil {
				select {
				case refreshErr <- err:
				default:
				}
			}
		}()
	}
	refresh()

	shown := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-refreshErr:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			if st.Status == viewmodel.StatusLoading {
				continue
			}
			if err := show(st); err != nil {
				return err
			}
			shown++
			if times > 0 && shown >= times {
				return nil
			}
		case <-ticker.C:
			refresh()
		}
	}
}
