// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/timeutil"
)

func (s *Server) handleEPGService(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "ref")
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := s.parseDay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := s.epg.ForService(r.Context(), ref, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events = filter.Filter(events, queryString(r, "q"), filter.EventFields)
	writeJSON(w, http.StatusOK, map[string]any{
		"service_ref": ref,
		"day":         timeutil.FormatDate(day, timeutil.OrderYMD),
		"events":      events,
	})
}

func (s *Server) handleEPGSearch(w http.ResponseWriter, r *http.Request) {
	q, err := requiredQuery(r, "q")
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := s.epg.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "events": events})
}

func (s *Server) handleEPGNow(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "bouquet")
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := s.epg.Now(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bouquet": ref, "events": events})
}

func (s *Server) handleEPGMulti(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "bouquet")
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := s.parseDay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	schedules, err := s.epg.Multi(r.Context(), ref, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bouquet":  ref,
		"day":      timeutil.FormatDate(day, timeutil.OrderYMD),
		"services": schedules,
	})
}

func (s *Server) parseDay(r *http.Request) (time.Time, error) {
	day, err := timeutil.ParseDay(queryString(r, "day"), s.clock.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return day, nil
}
