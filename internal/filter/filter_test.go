// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filter

import (
	"testing"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Das Erste HD", "das erste hd"},
		{"  Café   Crème—Noir ", "cafe creme noir"},
		{"Straße", "strasse"},
		{"Ærø", "aero"},
		{"ProSieben MAXX!", "prosieben maxx"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("tatort", "tatort"))
	assert.Equal(t, 1, levenshtein("tatorr", "tatort"))
	assert.Equal(t, 2, levenshtein("tatrot", "tatort"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("über", "uber"))
}

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  int
	}{
		{"exact", "arte", "arte", ScoreExact},
		{"field prefix", "arte", "arte HD", ScorePrefix},
		{"word prefix", "erste", "Das Erste HD", ScoreWordPrefix},
		{"substring", "rste", "Das Erste HD", ScoreSubstring},
		{"fuzzy", "tatorr", "Der Tatort", ScoreFuzzy},
		{"short terms are not fuzzy", "zdx", "ZDF", 0},
		{"two edits", "tatrot", "Tatort", 0},
		{"diacritics folded", "creme", "Crème brûlée", ScorePrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.query, Field{Text: tt.text, Weight: 1}))
		})
	}
}

func TestScoreAllTermsMustMatch(t *testing.T) {
	fields := ChannelFields("Das Erste HD", "Tagesschau")
	assert.Equal(t, (ScorePrefix+ScoreWordPrefix)*3, Score("das erste", fields...))
	assert.Equal(t, ScorePrefix*3+ScoreExact*1, Score("das tagesschau", fields...))
	assert.Zero(t, Score("das zdf", fields...))
}

func TestScoreEmptyQuery(t *testing.T) {
	assert.Equal(t, 1, Score("", Field{Text: "x", Weight: 1}))
	assert.Equal(t, 1, Score("  !! ", Field{Text: "x", Weight: 1}))
}

func TestScoreIgnoresWeightlessFields(t *testing.T) {
	assert.Zero(t, Score("arte", Field{Text: "arte", Weight: 0}))
}

func TestFilterRanksAndKeepsTieOrder(t *testing.T) {
	events := []openwebif.Event{
		{ID: 1, Title: "Polizeiruf 110", ShortDesc: "Kein Tatort heute"},
		{ID: 2, Title: "Tatort"},
		{ID: 3, Title: "Tagesschau", LongDesc: "Danach: Tatort"},
		{ID: 4, Title: "Wetter"},
		{ID: 5, Title: "Tatort"},
	}
	got := Filter(events, "tatort", EventFields)

	ids := make([]int64, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	if diff := cmp.Diff([]int64{2, 5, 1, 3}, ids); diff != "" {
		t.Errorf("filter order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	items := []string{"b", "a"}
	got := Filter(items, "  ", func(s string) []Field { return []Field{{Text: s, Weight: 1}} })
	assert.Equal(t, items, got)
}

func TestFilterNoMatches(t *testing.T) {
	got := Filter([]string{"a"}, "zzz", func(s string) []Field { return []Field{{Text: s, Weight: 1}} })
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFieldSets(t *testing.T) {
	movie := openwebif.Movie{Title: "Der Alte", Filename: "/media/hdd/movie/20250101 2015 - ZDF HD - Der Alte.ts"}
	assert.Positive(t, Score("alte", MovieFields(movie)...))
	assert.Positive(t, Score("zdf", MovieFields(movie)...), "filename is searchable")

	timer := openwebif.Timer{Name: "Sportschau", ServiceName: "Das Erste HD"}
	assert.Equal(t, ScoreWordPrefix*2, Score("erste", TimerFields(timer)...))
}
