// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/repository"
)

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	listing, err := s.movies.List(r.Context(), queryString(r, "dir"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing.Recordings = filter.Filter(listing.Recordings, queryString(r, "q"), repository.Recording.SearchFields)
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "ref")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.movies.Delete(r.Context(), ref); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
