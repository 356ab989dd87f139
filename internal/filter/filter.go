// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filter

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Per-term match scores before weighting.
const (
	ScoreExact      = 100
	ScorePrefix     = 80
	ScoreWordPrefix = 60
	ScoreSubstring  = 40
	ScoreFuzzy      = 20
)

// fuzzyMinRunes is the shortest term that may match with one edit.
const fuzzyMinRunes = 4

// Field is one searchable attribute of an item.
type Field struct {
	Text   string
	Weight int
}

// Score rates how well fields match query. Every query term must match at
// least one field, otherwise the score is 0. An empty query scores 1.
func Score(query string, fields ...Field) int {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 {
		return 1
	}
	return scoreTerms(terms, normalizeFields(fields))
}

func normalizeFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Weight <= 0 {
			continue
		}
		if text := Normalize(f.Text); text != "" {
			out = append(out, Field{Text: text, Weight: f.Weight})
		}
	}
	return out
}

func scoreTerms(terms []string, fields []Field) int {
	total := 0
	for _, term := range terms {
		best := 0
		for _, f := range fields {
			best = max(best, termScore(term, f.Text)*f.Weight)
		}
		if best == 0 {
			return 0
		}
		total += best
	}
	return total
}

func termScore(term, text string) int {
	switch {
	case text == term:
		return ScoreExact
	case strings.HasPrefix(text, term):
		return ScorePrefix
	}
	words := strings.Fields(text)
	for _, w := range words {
		if strings.HasPrefix(w, term) {
			return ScoreWordPrefix
		}
	}
	if strings.Contains(text, term) {
		return ScoreSubstring
	}
	if utf8.RuneCountInString(term) >= fuzzyMinRunes {
		for _, w := range words {
			if abs(utf8.RuneCountInString(w)-utf8.RuneCountInString(term)) <= 1 && levenshtein(term, w) <= 1 {
				return ScoreFuzzy
			}
		}
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Filter keeps the items matching query, best first. Ties keep their input
// order. An empty query returns items unchanged.
func Filter[T any](items []T, query string, fields func(T) []Field) []T {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 {
		return items
	}

	type ranked struct {
		item  T
		score int
	}
	hits := make([]ranked, 0, len(items))
	for _, item := range items {
		if s := scoreTerms(terms, normalizeFields(fields(item))); s > 0 {
			hits = append(hits, ranked{item: item, score: s})
		}
	}
	slices.SortStableFunc(hits, func(a, b ranked) int { return b.score - a.score })

	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}
