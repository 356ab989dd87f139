// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filter

import (
	"path"

	"github.com/ManuGH/e2remote/internal/openwebif"
)

// ChannelFields ranks channels by name, then by the title airing now.
func ChannelFields(name, nowTitle string) []Field {
	return []Field{
		{Text: name, Weight: 3},
		{Text: nowTitle, Weight: 1},
	}
}

// EventFields ranks EPG events.
func EventFields(e openwebif.Event) []Field {
	return []Field{
		{Text: e.Title, Weight: 3},
		{Text: e.ShortDesc, Weight: 2},
		{Text: e.LongDesc, Weight: 1},
		{Text: e.ServiceName, Weight: 1},
	}
}

// MovieFields ranks recordings.
func MovieFields(m openwebif.Movie) []Field {
	return []Field{
		{Text: m.Title, Weight: 3},
		{Text: m.Description, Weight: 2},
		{Text: m.ExtendedDescription, Weight: 1},
		{Text: path.Base(m.Filename), Weight: 1},
	}
}

// TimerFields ranks timers.
func TimerFields(t openwebif.Timer) []Field {
	return []Field{
		{Text: t.Name, Weight: 3},
		{Text: t.ServiceName, Weight: 2},
		{Text: t.Description, Weight: 1},
	}
}
