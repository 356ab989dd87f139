// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func TestFromUnix(t *testing.T) {
	assert.True(t, FromUnix(0).IsZero())
	assert.True(t, FromUnix(-5).IsZero())
	assert.Equal(t, int64(1735732800), FromUnix(1735732800).Unix())
}

func TestFormatClock(t *testing.T) {
	ts := time.Date(2025, 1, 1, 20, 15, 0, 0, time.UTC)
	assert.Equal(t, "20:15", FormatClock(ts, true))
	assert.Equal(t, "8:15 PM", FormatClock(ts, false))
	assert.Equal(t, "12:05 AM", FormatClock(time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC), false))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-07", FormatDate(ts, OrderYMD))
	assert.Equal(t, "07.03.2025", FormatDate(ts, OrderDMY))
	assert.Equal(t, "03/07/2025", FormatDate(ts, OrderMDY))
	assert.Equal(t, "2025-03-07", FormatDate(ts, "bogus"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{-time.Hour, "0m"},
		{59 * time.Second, "0m"},
		{45 * time.Minute, "45m"},
		{65 * time.Minute, "1h 05m"},
		{2*time.Hour + 30*time.Minute + 59*time.Second, "2h 30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestProgressAndRemaining(t *testing.T) {
	begin := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	dur := 90 * time.Minute

	assert.Equal(t, 0, Progress(begin, dur, begin.Add(-time.Minute)))
	assert.Equal(t, 50, Progress(begin, dur, begin.Add(45*time.Minute)))
	assert.Equal(t, 100, Progress(begin, dur, begin.Add(3*time.Hour)))
	assert.Equal(t, 0, Progress(begin, 0, begin))

	assert.Equal(t, dur, Remaining(begin, dur, begin.Add(-time.Hour)))
	assert.Equal(t, 30*time.Minute, Remaining(begin, dur, begin.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), Remaining(begin, dur, begin.Add(2*time.Hour)))
}

func TestDayBoundaries(t *testing.T) {
	ts := time.Date(2025, 6, 15, 13, 45, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, int(time.Second-1), time.UTC), EndOfDay(ts))

	from, to := DayWindow(ts)
	assert.Equal(t, StartOfDay(ts), from)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestDayWindowAcrossDST(t *testing.T) {
	loc := berlin(t)
	from, to := DayWindow(time.Date(2025, 3, 30, 12, 0, 0, 0, loc))
	assert.Equal(t, 23*time.Hour, to.Sub(from))

	days := EPGDays(time.Date(2025, 3, 29, 22, 0, 0, 0, loc), 3)
	require.Len(t, days, 3)
	for i, d := range days {
		assert.Equal(t, 0, d.Hour(), "day %d", i)
	}
	assert.Equal(t, 31, days[2].Day())
}

func TestEPGDays(t *testing.T) {
	now := time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)
	days := EPGDays(now, 2)
	assert.Equal(t, []time.Time{
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, days)
	assert.Nil(t, EPGDays(now, 0))
}

func TestRelativeDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC) // Wednesday
	assert.Equal(t, "Today", RelativeDay(now.Add(-23*time.Hour), now))
	assert.Equal(t, "Tomorrow", RelativeDay(now.Add(time.Hour), now))
	assert.Equal(t, "Yesterday", RelativeDay(now.Add(-24*time.Hour), now))
	assert.Equal(t, "Friday", RelativeDay(now.Add(48*time.Hour), now))

	assert.True(t, IsToday(now, now))
	assert.False(t, IsTomorrow(now, now))
}

func TestCombineAndParseClock(t *testing.T) {
	hh, mm, err := ParseClock(" 20:15 ")
	require.NoError(t, err)
	got := Combine(time.Date(2025, 5, 4, 9, 9, 9, 9, time.UTC), hh, mm)
	assert.Equal(t, time.Date(2025, 5, 4, 20, 15, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2015", "24:00", "12:60", "ab:cd", "12:5"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	today := StartOfDay(now)

	for in, want := range map[string]time.Time{
		"":           today,
		"Today":      today,
		"tomorrow":   today.AddDate(0, 0, 1),
		"+3":         today.AddDate(0, 0, 3),
		"2025-02-10": time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
	} {
		got, err := ParseDay(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q: got %v", in, got)
	}

	_, err := ParseDay("+x", now)
	assert.Error(t, err)
	_, err = ParseDay("10.02.2025", now)
	assert.Error(t, err)
}
