// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimerChange(t *testing.T) {
	old := TimerKey{ServiceRef: "1:0:19:283D:3FB:1:C00000:0:0:0:", Begin: 1700000000, End: 1700003600}
	spec := TimerSpec{
		ServiceRef:  "1:0:19:2B66:3F3:1:C00000:0:0:0:",
		Name:        "Tatort",
		Description: "Krimi",
		Begin:       1700000300,
		End:         1700006000,
		AfterEvent:  AfterEventStandby,
		Tags:        []string{"crime", "sunday"},
	}

	q := buildTimerChange(old, spec)
	want := url.Values{
		"sRef":               {old.ServiceRef},
		"begin":              {"1700000000"},
		"end":                {"1700003600"},
		"channel":            {spec.ServiceRef},
		"change_begin":       {"1700000300"},
		"change_end":         {"1700006000"},
		"change_name":        {"Tatort"},
		"change_description": {"Krimi"},
		"disabled":           {"0"},
		"justplay":           {"0"},
		"always_zap":         {"0"},
		"afterevent":         {"1"},
		"repeated":           {"0"},
		"tags":               {"crime sunday"},
		"deleteOldOnSave":    {"1"},
	}
	assert.Equal(t, want, q)
}

func TestTimersDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":true,"timers":[{
			"serviceref":"1:0:1:","servicename":"Das Erste","name":"Tagesschau","description":"",
			"begin":"1700000000","end":1700000900,"duration":900,"state":2,"disabled":0,
			"justplay":"1","always_zap":0,"afterevent":3,"repeated":31,"eit":"4711",
			"dirname":"/media/hdd/movie/","tags":"news  daily",
			"logentries":[[1699999900,15,"prepare"],[1700000000,9,"record"],[1]]
		}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	timers, err := c.Timers(context.Background())
	require.NoError(t, err)
	require.Len(t, timers, 1)

	tm := timers[0]
	assert.Equal(t, int64(1700000000), tm.Begin)
	assert.Equal(t, TimerRawRunning, tm.State)
	assert.True(t, tm.JustPlay)
	assert.False(t, tm.AlwaysZap)
	assert.Equal(t, AfterEventAuto, tm.AfterEvent)
	assert.Equal(t, 31, tm.Repeated)
	assert.Equal(t, int64(4711), tm.EIT)
	assert.Equal(t, []string{"news", "daily"}, tm.Tags)
	assert.Equal(t, []TimerLogEntry{
		{Time: 1699999900, Code: 15, Message: "prepare"},
		{Time: 1700000000, Code: 9, Message: "record"},
	}, tm.Log)
	assert.Equal(t, TimerKey{ServiceRef: "1:0:1:", Begin: 1700000000, End: 1700000900}, tm.Key())
}

func TestAddTimerPostsForm(t *testing.T) {
	var method, contentType string
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		form = r.PostForm
		_, _ = w.Write([]byte(`{"result":true,"message":"Timer added"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	err := c.AddTimer(context.Background(), TimerSpec{ServiceRef: "1:0:1:", Name: "News", Begin: 10, End: 20, JustPlay: true, EIT: 5})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "1:0:1:", form.Get("sRef"))
	assert.Equal(t, "1", form.Get("justplay"))
	assert.Equal(t, "5", form.Get("eit"))
	assert.Empty(t, form.Get("dirname"))
}

func TestAddTimerConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":false,"message":"Conflicting Timer(s) detected! Tatort"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	err := c.AddTimer(context.Background(), TimerSpec{ServiceRef: "1:0:1:", Begin: 10, End: 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, IsTimerConflict(err))
}

func TestToggleTimerReportsDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/timertogglestatus", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("begin"))
		_, _ = w.Write([]byte(`{"result":true,"message":"Timer disabled","disabled":"true"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	disabled, err := c.ToggleTimer(context.Background(), TimerKey{ServiceRef: "1:0:1:", Begin: 100, End: 200})
	require.NoError(t, err)
	assert.True(t, disabled)
}

func TestParseAfterEvent(t *testing.T) {
	for in, want := range map[string]AfterEvent{
		"nothing": AfterEventNothing,
		"Standby": AfterEventStandby,
		"deep":    AfterEventDeepStandby,
		"2":       AfterEventDeepStandby,
		" auto ":  AfterEventAuto,
	} {
		got, ok := ParseAfterEvent(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "later", "7", "-1"} {
		_, ok := ParseAfterEvent(in)
		assert.False(t, ok, in)
	}
	assert.Equal(t, "deepstandby", AfterEventDeepStandby.String())
	assert.Equal(t, "afterevent(9)", AfterEvent(9).String())
}
