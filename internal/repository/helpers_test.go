// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/config"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// testNow is inside the default fixtures' broadcast day.
var testNow = time.Date(2025, 3, 14, 20, 30, 0, 0, time.Local)

func testClientConfig() config.ClientConfig {
	return config.ClientConfig{
		Timeout:          2 * time.Second,
		MaxRetries:       1,
		Backoff:          time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
		RateLimit:        1000,
		RateLimitBurst:   100,
		BreakerThreshold: -1,
	}
}

type testEnv struct {
	receiver *fake.Receiver
	store    *store.Store
	provider *Provider
	device   store.Device
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := fake.New()
	t.Cleanup(r.Close)
	r.SetNow(testNow)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "e2remote.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	host, port := r.HostPort()
	d, err := st.AddDevice(context.Background(), store.Device{Name: "Living Room", Host: host, Port: port})
	require.NoError(t, err)

	return &testEnv{
		receiver: r,
		store:    st,
		provider: NewProvider(st, testClientConfig()),
		device:   d,
	}
}

func (e *testEnv) addEvent(ref string, id int64, title string, begin time.Time, dur time.Duration) {
	e.receiver.AddEvent(ref, fake.Event{ID: id, Title: title, Short: title + " short", Begin: begin.Unix(), Duration: int64(dur / time.Second)})
}
