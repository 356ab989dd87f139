// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/e2remote/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// deviceView is a device profile as exposed over HTTP; passwords never leave the store.
type deviceView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Host            string    `json:"host"`
	Port            int       `json:"port"`
	HTTPS           bool      `json:"https"`
	Username        string    `json:"username,omitempty"`
	HasPassword     bool      `json:"has_password"`
	StreamPort      int       `json:"stream_port"`
	UseWebIFStreams bool      `json:"use_webif_streams"`
	BaseURL         string    `json:"base_url"`
	Current         bool      `json:"current"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newDeviceView(d store.Device, current uuid.UUID) deviceView {
	return deviceView{
		ID:              d.ID,
		Name:            d.Name,
		Host:            d.Host,
		Port:            d.Port,
		HTTPS:           d.HTTPS,
		Username:        d.Username,
		HasPassword:     d.Password != "",
		StreamPort:      d.StreamPort,
		UseWebIFStreams: d.UseWebIFStreams,
		BaseURL:         d.BaseURL(),
		Current:         d.ID == current,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type deviceRequest struct {
	Name            string `json:"name"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	HTTPS           bool   `json:"https"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	StreamPort      int    `json:"stream_port"`
	UseWebIFStreams bool   `json:"use_webif_streams"`
	Current         bool   `json:"current"`
}

func (s *Server) currentID(r *http.Request) (uuid.UUID, error) {
	cur, err := s.store.CurrentDevice(r.Context())
	if errors.Is(err, store.ErrNoCurrentDevice) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return cur.ID, nil
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	current, err := s.currentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		out = append(out, newDeviceView(d, current))
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": out})
}

func (s *Server) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.store.AddDevice(r.Context(), store.Device{
		Name:            req.Name,
		Host:            req.Host,
		Port:            req.Port,
		HTTPS:           req.HTTPS,
		Username:        req.Username,
		Password:        req.Password,
		StreamPort:      req.StreamPort,
		UseWebIFStreams: req.UseWebIFStreams,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Current {
		if err := s.store.SetCurrentDevice(r.Context(), d.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	current, err := s.currentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDeviceView(d, current))
}

func (s *Server) handleSetCurrentDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.FindDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SetCurrentDevice(r.Context(), d.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeviceView(d, d.ID))
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.FindDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteDevice(r.Context(), d.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
