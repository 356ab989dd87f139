// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalLockFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "explicit lock", body: `{"result":true,"snr":20,"lock":true}`, want: true},
		{name: "missing lock high snr", body: `{"result":true,"snr":"78 %"}`, want: true},
		{name: "missing lock low snr", body: `{"result":true,"snr":30}`, want: false},
		{name: "explicit unlock high snr", body: `{"result":true,"snr":60,"lock":false}`, want: false},
		{name: "string lock", body: `{"result":true,"snr":10,"lock":"1"}`, want: true},
		{name: "null lock", body: `{"result":true,"snr":70,"lock":null}`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sig, err := newTestClient(t, srv.URL, Options{}).Signal(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.Locked)
		})
	}
}

func TestVolumeActions(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("set"))
		_, _ = w.Write([]byte(`{"result":true,"current":"35","ismute":false}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	for _, action := range []string{"up", "DOWN", "mute", "state", "35"} {
		st, err := c.Volume(context.Background(), action)
		require.NoError(t, err, action)
		assert.Equal(t, int64(35), st.Current.Int64())
	}
	assert.Equal(t, []string{"up", "down", "mute", "state", "set35"}, got)

	for _, bad := range []string{"101", "-1", "loud"} {
		_, err := c.Volume(context.Background(), bad)
		assert.ErrorIs(t, err, ErrUpstreamBadResponse, bad)
	}
	assert.Len(t, got, 5, "invalid actions never reach the receiver")
}

func TestParsePowerState(t *testing.T) {
	tests := map[string]PowerState{
		"":        PowerQuery,
		"toggle":  PowerToggle,
		"Standby": PowerStandby,
		"on":      PowerWakeup,
		"reboot":  PowerReboot,
		"off":     PowerDeepStandby,
		"gui":     PowerRestartGUI,
	}
	for in, want := range tests {
		got, ok := ParsePowerState(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParsePowerState("hibernate")
	assert.False(t, ok)
}

func TestPowerStateQueryOmitsNewState(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"result":true,"instandby":"true"}`))
	}))
	defer srv.Close()

	standby, err := newTestClient(t, srv.URL, Options{}).PowerState(context.Background(), PowerQuery)
	require.NoError(t, err)
	assert.True(t, standby)
	assert.Empty(t, query)
}

func TestScreenshotParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/grab", r.URL.Path)
		assert.Equal(t, "osd", r.URL.Query().Get("mode"))
		assert.Equal(t, "720", r.URL.Query().Get("r"))
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	}))
	defer srv.Close()

	img, err := newTestClient(t, srv.URL, Options{}).Screenshot(context.Background(), ScreenshotOSD, 720)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xD9}, img)
}

func TestParseMessageTypeAndScreenshotMode(t *testing.T) {
	kind, ok := ParseMessageType("")
	assert.True(t, ok)
	assert.Equal(t, MessageInfo, kind)
	kind, ok = ParseMessageType("Warning")
	assert.True(t, ok)
	assert.Equal(t, MessageWarning, kind)
	kind, ok = ParseMessageType("yesno")
	assert.True(t, ok)
	assert.Equal(t, MessageYesNo, kind)
	_, ok = ParseMessageType("loud")
	assert.False(t, ok)

	mode, ok := ParseScreenshotMode("")
	assert.True(t, ok)
	assert.Equal(t, ScreenshotAll, mode)
	mode, ok = ParseScreenshotMode("OSD")
	assert.True(t, ok)
	assert.Equal(t, ScreenshotOSD, mode)
	_, ok = ParseScreenshotMode("thumb")
	assert.False(t, ok)
}
