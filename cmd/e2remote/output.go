// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/timeutil"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// emit prints v as JSON with --json, otherwise the table built by render.
func (a *app) emit(v any, render func() string) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(a.out, render())
	return err
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func renderPairs(pairs [][2]string) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...).
		Render()
}

// clockRange renders "20:15-21:45" in the user's clock format.
func clockRange(s repository.Settings, begin, end int64) string {
	return timeutil.FormatClock(timeutil.FromUnix(begin), s.Clock24h) + "-" +
		timeutil.FormatClock(timeutil.FromUnix(end), s.Clock24h)
}

func dateTime(s repository.Settings, sec int64) string {
	t := timeutil.FromUnix(sec)
	if t.IsZero() {
		return ""
	}
	return timeutil.FormatDate(t, s.DateOrder) + " " + timeutil.FormatClock(t, s.Clock24h)
}

func minutes(sec int64) string {
	return timeutil.FormatDuration(time.Duration(sec) * time.Second)
}
