// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerState(t *testing.T) {
	now := time.Unix(1_000, 0)
	tests := []struct {
		name  string
		timer openwebif.Timer
		want  string
	}{
		{"waiting", openwebif.Timer{State: openwebif.TimerRawWaiting}, TimerStateScheduled},
		{"running", openwebif.Timer{State: openwebif.TimerRawRunning}, TimerStateRecording},
		{"ended", openwebif.Timer{State: openwebif.TimerRawEnded}, TimerStateCompleted},
		{"disabled wins over waiting", openwebif.Timer{State: openwebif.TimerRawWaiting, Disabled: 1}, TimerStateDisabled},
		{"disabled wins over running", openwebif.Timer{State: openwebif.TimerRawRunning, Disabled: 1}, TimerStateDisabled},
		{"prepared before window", openwebif.Timer{State: openwebif.TimerRawPrepared, Begin: 1_100, End: 1_200}, TimerStateScheduled},
		{"prepared inside window", openwebif.Timer{State: openwebif.TimerRawPrepared, Begin: 900, End: 1_200}, TimerStateRecording},
		{"odd state after window", openwebif.Timer{State: 7, Begin: 100, End: 200}, TimerStateCompleted},
		{"odd state without window", openwebif.Timer{State: 7}, TimerStateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimerState(tt.timer, now))
		})
	}
}

func TestTimerDraftValidate(t *testing.T) {
	begin := time.Unix(1_700_000_000, 0)
	valid := TimerDraft{ServiceRef: fake.ARDRef, Name: "Tatort", Begin: begin, End: begin.Add(time.Hour)}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*TimerDraft)
		want   string
	}{
		{"no service", func(d *TimerDraft) { d.ServiceRef = " " }, "service is required"},
		{"no name", func(d *TimerDraft) { d.Name = "" }, "name is required"},
		{"end before begin", func(d *TimerDraft) { d.End = d.Begin.Add(-time.Minute) }, "end must be after begin"},
		{"missing times", func(d *TimerDraft) { d.Begin = time.Time{} }, "begin and end are required"},
		{"repeat mask", func(d *TimerDraft) { d.Repeated = 128 }, "repeat mask 128"},
		{"after event", func(d *TimerDraft) { d.AfterEvent = 4 }, "after event 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			assert.ErrorIs(t, err, ErrInvalidTimer)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	multi := TimerDraft{}
	err := multi.Validate()
	assert.ErrorContains(t, err, "service is required")
	assert.ErrorContains(t, err, "name is required")
}

func TestTimerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := NewTimers(env.provider, fixedClock{testNow})

	begin := testNow.Add(time.Hour).Truncate(time.Minute)
	draft := TimerDraft{ServiceRef: fake.ARDRef, Name: "Tatort", Begin: begin, End: begin.Add(90 * time.Minute), AfterEvent: openwebif.AfterEventAuto}
	require.NoError(t, repo.Add(ctx, draft))

	// Overlapping recording on the single fake tuner.
	clash := draft
	clash.ServiceRef = fake.ZDFRef
	clash.Name = "Krimi"
	err := repo.Add(ctx, clash)
	assert.ErrorIs(t, err, openwebif.ErrConflict)
	assert.True(t, openwebif.IsTimerConflict(err))
	assert.Equal(t, []string{"Tatort"}, openwebif.ConflictingTimers(err))

	timers, err := repo.List(ctx, TimersQuery{})
	require.NoError(t, err)
	require.Len(t, timers, 1)
	tm := timers[0]
	assert.Equal(t, "Das Erste HD", tm.ServiceName)
	assert.Equal(t, TimerStateScheduled, tm.State)
	assert.Equal(t, openwebif.AfterEventAuto, tm.AfterEvent)

	key, err := ParseTimerID(tm.ID)
	require.NoError(t, err)
	assert.Equal(t, tm.Key(), key)

	disabled, err := repo.Toggle(ctx, key)
	require.NoError(t, err)
	assert.True(t, disabled)
	timers, err = repo.List(ctx, TimersQuery{State: TimerStateDisabled})
	require.NoError(t, err)
	require.Len(t, timers, 1)

	edit := DraftFromTimer(timers[0])
	edit.Name = "Tatort (HD)"
	edit.End = edit.End.Add(10 * time.Minute)
	require.NoError(t, repo.Change(ctx, key, edit))

	timers, err = repo.List(ctx, TimersQuery{State: "all"})
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "Tatort (HD)", timers[0].Name)
	assert.Equal(t, TimerStateDisabled, timers[0].State, "the edit keeps the timer disabled")

	require.NoError(t, repo.Delete(ctx, timers[0].Key()))
	err = repo.Delete(ctx, timers[0].Key())
	assert.ErrorIs(t, err, openwebif.ErrNotFound)
	assert.True(t, openwebif.IsTimerNotFound(err))

	timers, err = repo.List(ctx, TimersQuery{})
	require.NoError(t, err)
	assert.Empty(t, timers)
}

func TestTimerAddRejectsInvalidDraftLocally(t *testing.T) {
	env := newTestEnv(t)
	err := NewTimers(env.provider, nil).Add(context.Background(), TimerDraft{ServiceRef: fake.ARDRef})
	assert.ErrorIs(t, err, ErrInvalidTimer)
	assert.Zero(t, env.receiver.RequestCount("/api/timeradd"))
}

func TestTimerAddForEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	begin := testNow.Add(2 * time.Hour)
	env.addEvent(fake.ARDRef, 77, "Sportschau", begin, time.Hour)

	repo := NewTimers(env.provider, fixedClock{testNow})
	require.NoError(t, repo.AddForEvent(ctx, fake.ARDRef, 77, openwebif.EventTimerOptions{}))

	timers, err := repo.List(ctx, TimersQuery{})
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "Sportschau", timers[0].Name)
	assert.Equal(t, int64(77), timers[0].EIT)
	assert.Equal(t, begin.Unix()-120, timers[0].Begin)

	assert.ErrorIs(t, repo.AddForEvent(ctx, "", 1, openwebif.EventTimerOptions{}), ErrInvalidTimer)
	assert.True(t, openwebif.IsTimerNotFound(repo.AddForEvent(ctx, fake.ARDRef, 9999, openwebif.EventTimerOptions{})))

	before := env.receiver.RequestCount("/api/timeraddbyeventid")
	for _, after := range []openwebif.AfterEvent{-1, 4, 99} {
		err := repo.AddForEvent(ctx, fake.ARDRef, 77, openwebif.EventTimerOptions{AfterEvent: after})
		assert.ErrorIs(t, err, ErrInvalidTimer, "after event %d", after)
	}
	assert.Equal(t, before, env.receiver.RequestCount("/api/timeraddbyeventid"))
}

func TestTimerListFiltersAndOrders(t *testing.T) {
	env := newTestEnv(t)
	base := testNow.Unix()
	env.receiver.AddTimer(fake.Timer{ServiceRef: fake.ZDFRef, ServiceName: "ZDF HD", Name: "Later", Begin: base + 7200, End: base + 9000})
	env.receiver.AddTimer(fake.Timer{ServiceRef: fake.ARDRef, ServiceName: "Das Erste HD", Name: "Running", Begin: base - 600, End: base + 600, State: openwebif.TimerRawRunning})
	env.receiver.AddTimer(fake.Timer{ServiceRef: fake.ARDRef, ServiceName: "Das Erste HD", Name: "Old", Begin: base - 90000, End: base - 86400, State: openwebif.TimerRawEnded})

	repo := NewTimers(env.provider, fixedClock{testNow})
	all, err := repo.List(context.Background(), TimersQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Old", "Running", "Later"}, []string{all[0].Name, all[1].Name, all[2].Name})

	recent, err := repo.List(context.Background(), TimersQuery{From: base - 3600})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	recording, err := repo.List(context.Background(), TimersQuery{State: TimerStateRecording})
	require.NoError(t, err)
	require.Len(t, recording, 1)
	assert.Equal(t, "Running", recording[0].Name)

	hits := filter.Filter(all, "ard", Timer.SearchFields)
	assert.Empty(t, hits)
	hits = filter.Filter(all, "zdf", Timer.SearchFields)
	require.Len(t, hits, 1)
	assert.Equal(t, "Later", hits[0].Name)
}

func TestTimerIDRoundTrip(t *testing.T) {
	keys := []openwebif.TimerKey{
		{ServiceRef: fake.ZDFRef, Begin: 1600000000, End: 1600003600},
		{ServiceRef: "1:0:1:445C:453:1:C00000:0:0:0:http%3a//example.com/a|b.m3u8", Begin: 1700000000, End: 1700007200},
	}
	for _, k := range keys {
		got, err := ParseTimerID(MakeTimerID(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	for _, bad := range []string{"!!!", MakeTimerID(openwebif.TimerKey{ServiceRef: "x", Begin: 5, End: 5}), "eA"} {
		_, err := ParseTimerID(bad)
		assert.ErrorIs(t, err, ErrInvalidTimer, bad)
	}
}
