// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/api/middleware"
	"github.com/ManuGH/e2remote/internal/config"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 3, 14, 20, 30, 0, 0, time.Local)

type testEnv struct {
	receiver *fake.Receiver
	store    *store.Store
	handler  http.Handler
}

// newTestEnv starts a fake receiver and an API handler. withDevice registers
// the receiver as the current device.
func newTestEnv(t *testing.T, withDevice bool) *testEnv {
	t.Helper()
	r := fake.New()
	t.Cleanup(r.Close)
	r.SetNow(testNow)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "e2remote.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	if withDevice {
		host, port := r.HostPort()
		_, err := st.AddDevice(context.Background(), store.Device{Name: "Living Room", Host: host, Port: port})
		require.NoError(t, err)
	}

	provider := repository.NewProvider(st, config.ClientConfig{
		Timeout:          2 * time.Second,
		MaxRetries:       -1,
		Backoff:          time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
		RateLimit:        1000,
		RateLimitBurst:   100,
		BreakerThreshold: -1,
	})
	srv := New(Deps{Store: st, Provider: provider, Clock: fixedClock{testNow}, Version: "test"})
	return &testEnv{
		receiver: r,
		store:    st,
		handler:  srv.Handler(middleware.StackConfig{EnableMetrics: true}),
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func q(path string, kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return path + "?" + v.Encode()
}
