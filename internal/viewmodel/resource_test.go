// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package viewmodel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestResourceRefreshLoads(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := NewResource("channels", func(_ context.Context, key string) ([]string, error) {
		return []string{key + "-1", key + "-2"}, nil
	})
	defer r.Close()
	clock := time.Date(2025, 3, 14, 20, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	assert.Equal(t, StatusLoading, r.State().Status)

	st, err := r.Refresh(context.Background(), "fav")
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, []string{"fav-1", "fav-2"}, st.Data)
	assert.Equal(t, "fav", st.Key)
	assert.NoError(t, st.Err)
	assert.True(t, clock.Equal(st.UpdatedAt))
	assert.Equal(t, st, r.State())
}

func TestResourceKeepsDataOnError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var fail atomic.Bool
	r := NewResource("movies", func(_ context.Context, _ string) ([]string, error) {
		if fail.Load() {
			return nil, openwebif.ErrTimeout
		}
		return []string{"a"}, nil
	})
	defer r.Close()

	_, err := r.Refresh(context.Background(), "")
	require.NoError(t, err)

	fail.Store(true)
	st, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoNetwork, st.Status)
	assert.ErrorIs(t, st.Err, openwebif.ErrTimeout)
	assert.Equal(t, []string{"a"}, st.Data)
}

func TestResourceNoDeviceClearsData(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int32
	r := NewResource("timers", func(_ context.Context, _ string) ([]string, error) {
		if calls.Add(1) > 1 {
			return nil, repository.ErrNoDevice
		}
		return []string{"a"}, nil
	})
	defer r.Close()

	_, err := r.Refresh(context.Background(), "")
	require.NoError(t, err)
	st, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoDevice, st.Status)
	assert.Nil(t, st.Data)
}

func TestResourceRefreshCancelsOtherKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	started := make(chan struct{})
	cancelled := make(chan error, 1)
	r := NewResource("channels", func(ctx context.Context, key string) (string, error) {
		if key == "slow" {
			close(started)
			<-ctx.Done()
			cancelled <- ctx.Err()
			return "", ctx.Err()
		}
		return key, nil
	})
	defer r.Close()

	done := make(chan struct{})
	var slowErr error
	go func() {
		defer close(done)
		_, slowErr = r.Refresh(context.Background(), "slow")
	}()
	<-started

	st, err := r.Refresh(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, "fast", st.Data)

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch was not cancelled")
	}
	<-done
	assert.ErrorIs(t, slowErr, context.Canceled, "the overtaken refresh reports cancellation")
	assert.Equal(t, "fast", r.State().Data)
}

func TestResourceCollapsesSameKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int32
	release := make(chan struct{})
	r := NewResource("epg", func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return key, nil
	})
	defer r.Close()

	ctx := context.Background()
	gen1, ch1, err := r.start(ctx, "k")
	require.NoError(t, err)
	gen2, ch2, err := r.start(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, gen1, gen2)

	close(release)
	res1 := <-ch1
	res2 := <-ch2
	assert.Equal(t, res1.Val, res2.Val)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResourceCallerContextDoesNotCancelFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	r := NewResource("signal", func(ctx context.Context, _ string) (int, error) {
		select {
		case <-release:
			return 42, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := r.Refresh(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatusLoading, st.Status)

	close(release)
	st, err = r.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 42, st.Data)
}

func TestResourceSubscribe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := NewResource("info", func(_ context.Context, _ string) (string, error) {
		return "ok", nil
	})
	defer r.Close()

	updates, unsubscribe := r.Subscribe()
	_, err := r.Refresh(context.Background(), "")
	require.NoError(t, err)

	// Only the latest state is buffered.
	st := <-updates
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, "ok", st.Data)

	unsubscribe()
	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
}

func TestResourceCloseCancelsFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	started := make(chan struct{})
	r := NewResource("status", func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	updates, _ := r.Subscribe()

	done := make(chan struct{})
	var inflightErr error
	go func() {
		defer close(done)
		_, inflightErr = r.Refresh(context.Background(), "")
	}()
	<-started

	r.Close()
	r.Close()
	<-done
	assert.ErrorIs(t, inflightErr, ErrClosed)

	for range updates {
	}
	_, err := r.Refresh(context.Background(), "")
	assert.True(t, errors.Is(err, ErrClosed))

	late, _ := r.Subscribe()
	_, open := <-late
	assert.False(t, open)
}
