// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/e2remote/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	scope, err := store.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := s.store.SearchHistory(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scope": scope, "queries": history})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAddSearch(w http.ResponseWriter, r *http.Request) {
	scope, err := store.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.AddSearch(r.Context(), scope, req.Query); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSearchHistory(w http.ResponseWriter, r *http.Request) {
	scope, err := store.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.ClearSearchHistory(r.Context(), scope); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
