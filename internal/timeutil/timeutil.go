// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package timeutil holds the date and time helpers used to present EPG,
// timer and recording times. Calendar math is done in the location of the
// time passed in.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateOrder selects how FormatDate lays out a date.
type DateOrder string

const (
	OrderYMD DateOrder = "ymd"
	OrderDMY DateOrder = "dmy"
	OrderMDY DateOrder = "mdy"
)

// FromUnix converts receiver timestamps (unix seconds) to local time. Zero
// stays the zero Time.
func FromUnix(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// FormatClock renders the time of day as "15:04" or "3:04 PM".
func FormatClock(t time.Time, use24h bool) string {
	if use24h {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FormatDate renders the date in the requested order. Unknown orders fall
// back to ISO style.
func FormatDate(t time.Time, order DateOrder) string {
	switch order {
	case OrderDMY:
		return t.Format("02.01.2006")
	case OrderMDY:
		return t.Format("01/02/2006")
	default:
		return t.Format("2006-01-02")
	}
}

// FormatDuration renders d as "1h 05m", "45m" or "0m". Seconds are dropped
// and negative durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "0m"
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// Progress returns how far now is into the event, in percent, clamped to
// 0..100.
func Progress(begin time.Time, dur time.Duration, now time.Time) int {
	if dur <= 0 || now.Before(begin) {
		return 0
	}
	elapsed := now.Sub(begin)
	if elapsed >= dur {
		return 100
	}
	return int(elapsed * 100 / dur)
}

// Remaining returns the time left until the event ends, never negative.
func Remaining(begin time.Time, dur time.Duration, now time.Time) time.Duration {
	left := begin.Add(dur).Sub(now)
	if left < 0 {
		return 0
	}
	return min(left, dur)
}

// StartOfDay returns midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayWindow returns [start, end) of t's day, DST aware.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// EPGDays returns the start of n consecutive days beginning today.
func EPGDays(now time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}
	start := StartOfDay(now)
	days := make([]time.Time, n)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether t falls on now's calendar day.
func IsToday(t, now time.Time) bool {
	return sameDay(now, t)
}

// IsTomorrow reports whether t falls on the day after now.
func IsTomorrow(t, now time.Time) bool {
	return sameDay(StartOfDay(now).AddDate(0, 0, 1), t)
}

// RelativeDay names t relative to now: "Today", "Tomorrow", "Yesterday",
// otherwise the weekday.
func RelativeDay(t, now time.Time) string {
	switch {
	case IsToday(t, now):
		return "Today"
	case IsTomorrow(t, now):
		return "Tomorrow"
	case sameDay(StartOfDay(now).AddDate(0, 0, -1), t):
		return "Yesterday"
	default:
		return t.In(now.Location()).Weekday().String()
	}
}

// Combine returns date's day at hh:mm.
func Combine(date time.Time, hh, mm int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hh, mm, 0, 0, date.Location())
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (hh, mm int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	hh, err = strconv.Atoi(hs)
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	mm, err = strconv.Atoi(ms)
	if err != nil || len(ms) != 2 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hh, mm, nil
}

// ParseDay parses "today", "tomorrow", "+N" or a YYYY-MM-DD date into the
// start of that day in now's location.
func ParseDay(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := StartOfDay(now)
	switch {
	case s == "" || s == "today":
		return today, nil
	case s == "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case strings.HasPrefix(s, "+"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid day offset %q", s)
		}
		return today.AddDate(0, 0, n), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: want today, tomorrow, +N or YYYY-MM-DD", s)
	}
	return t, nil
}
