// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/go-chi/chi/v5"
)

type timerRequest struct {
	ServiceRef  string   `json:"service_ref"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Begin       int64    `json:"begin"`
	End         int64    `json:"end"`
	Disabled    bool     `json:"disabled"`
	JustPlay    bool     `json:"just_play"`
	AlwaysZap   bool     `json:"always_zap"`
	AfterEvent  *int     `json:"after_event"`
	Repeated    int      `json:"repeated"`
	DirName     string   `json:"dirname"`
	Tags        []string `json:"tags"`
	EventID     int64    `json:"event_id"`
}

func unixOrZero(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// afterEvent resolves the requested after-event action, falling back to the
// stored preference.
func (s *Server) afterEvent(r *http.Request, req timerRequest) (openwebif.AfterEvent, error) {
	if req.AfterEvent != nil {
		return openwebif.AfterEvent(*req.AfterEvent), nil
	}
	settings, err := repository.LoadSettings(r.Context(), s.store)
	if err != nil {
		return 0, err
	}
	return settings.DefaultAfterEvent, nil
}

func (req timerRequest) draft(after openwebif.AfterEvent) repository.TimerDraft {
	return repository.TimerDraft{
		ServiceRef:  req.ServiceRef,
		Name:        req.Name,
		Description: req.Description,
		Begin:       unixOrZero(req.Begin),
		End:         unixOrZero(req.End),
		Disabled:    req.Disabled,
		JustPlay:    req.JustPlay,
		AlwaysZap:   req.AlwaysZap,
		AfterEvent:  after,
		Repeated:    req.Repeated,
		DirName:     req.DirName,
		Tags:        req.Tags,
	}
}

func (s *Server) handleListTimers(w http.ResponseWriter, r *http.Request) {
	state := queryString(r, "state")
	if state != "" && state != "all" && !slices.Contains(repository.TimerStates(), state) {
		writeError(w, r, fmt.Errorf("%w: unknown timer state %q", errBadRequest, state))
		return
	}
	from, _, err := queryInt64(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	timers, err := s.timers.List(r.Context(), repository.TimersQuery{State: state, From: from})
	if err != nil {
		writeError(w, r, err)
		return
	}
	timers = filter.Filter(timers, queryString(r, "q"), repository.Timer.SearchFields)
	writeJSON(w, http.StatusOK, map[string]any{"timers": timers})
}

func (s *Server) handleAddTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	after, err := s.afterEvent(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.EventID > 0 {
		opts := openwebif.EventTimerOptions{
			JustPlay:   req.JustPlay,
			AlwaysZap:  req.AlwaysZap,
			AfterEvent: after,
			DirName:    req.DirName,
			Tags:       req.Tags,
		}
		if err := s.timers.AddForEvent(r.Context(), req.ServiceRef, req.EventID, opts); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"service_ref": req.ServiceRef, "event_id": req.EventID})
		return
	}

	d := req.draft(after)
	if err := s.timers.Add(r.Context(), d); err != nil {
		writeError(w, r, err)
		return
	}
	spec := d.Spec()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": repository.MakeTimerID(openwebif.TimerKey{ServiceRef: spec.ServiceRef, Begin: spec.Begin, End: spec.End}),
	})
}

func (s *Server) handleChangeTimer(w http.ResponseWriter, r *http.Request) {
	key, err := repository.ParseTimerID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req timerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	after, err := s.afterEvent(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d := req.draft(after)
	if err := s.timers.Change(r.Context(), key, d); err != nil {
		writeError(w, r, err)
		return
	}
	spec := d.Spec()
	writeJSON(w, http.StatusOK, map[string]any{
		"id": repository.MakeTimerID(openwebif.TimerKey{ServiceRef: spec.ServiceRef, Begin: spec.Begin, End: spec.End}),
	})
}

func (s *Server) handleDeleteTimer(w http.ResponseWriter, r *http.Request) {
	key, err := timerKeyFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.timers.Delete(r.Context(), key); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTimer(w http.ResponseWriter, r *http.Request) {
	key, err := timerKeyFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	disabled, err := s.timers.Toggle(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": repository.MakeTimerID(key), "disabled": disabled})
}
