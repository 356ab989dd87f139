// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.device.Info(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.device.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeviceSignal(w http.ResponseWriter, r *http.Request) {
	signal, err := s.device.Signal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signal)
}

func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	long := queryBool(r, "long", false)
	if err := s.device.Remote(r.Context(), long, key); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "long": long})
}

func (s *Server) handleZap(w http.ResponseWriter, r *http.Request) {
	ref, err := requiredQuery(r, "ref")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.device.Zap(r.Context(), ref); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"service_ref": ref})
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	standby, err := s.device.Power(r.Context(), queryString(r, "state"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"in_standby": standby})
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	action, err := requiredQuery(r, "action")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vol, err := s.device.Volume(r.Context(), action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

type messageRequest struct {
	Text    string `json:"text"`
	Type    string `json:"type"`
	Timeout int    `json:"timeout"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, ok := openwebif.ParseMessageType(req.Type)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: unknown message type %q", errBadRequest, req.Type))
		return
	}
	if err := s.device.Message(r.Context(), req.Text, kind, req.Timeout); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStreamURL(w http.ResponseWriter, r *http.Request) {
	var (
		u   string
		err error
	)
	if file := queryString(r, "file"); file != "" {
		u, err = s.movies.StreamURL(r.Context(), file)
	} else {
		u, err = s.device.StreamURL(r.Context(), queryString(r, "ref"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}
