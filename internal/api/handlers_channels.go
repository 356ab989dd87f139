// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
)

func (s *Server) handleBouquets(w http.ResponseWriter, r *http.Request) {
	kind := openwebif.KindTV
	switch k := queryString(r, "kind"); k {
	case "", "tv":
	case "radio":
		kind = openwebif.KindRadio
	default:
		writeError(w, r, fmt.Errorf("%w: kind must be tv or radio", errBadRequest))
		return
	}
	bouquets, err := s.channels.Bouquets(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "bouquets": bouquets})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "ref")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var channels []repository.Channel
	if queryBool(r, "nownext", true) {
		channels, err = s.channels.WithNowNext(r.Context(), ref)
	} else {
		channels, err = s.channels.Channels(r.Context(), ref)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	channels = filter.Filter(channels, queryString(r, "q"), repository.Channel.SearchFields)
	writeJSON(w, http.StatusOK, map[string]any{"bouquet": ref, "channels": channels})
}
