// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the receiver control surface as JSON over HTTP.
package api

import (
	"net/http"

	"github.com/ManuGH/e2remote/internal/api/middleware"
	"github.com/ManuGH/e2remote/internal/health"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators of the API server.
type Deps struct {
	Store    *store.Store
	Provider *repository.Provider
	Clock    repository.Clock
	Version  string
}

// Server holds the handlers of the JSON API.
type Server struct {
	store    *store.Store
	provider *repository.Provider
	clock    repository.Clock
	health   *health.Manager

	channels *repository.Channels
	epg      *repository.EPG
	timers   *repository.Timers
	movies   *repository.Movies
	device   *repository.Device
}

// New creates a Server.
func New(deps Deps) *Server {
	clock := deps.Clock
	if clock == nil {
		clock = repository.RealClock{}
	}
	s := &Server{
		store:    deps.Store,
		provider: deps.Provider,
		clock:    clock,
		health:   health.NewManager(deps.Version, clock.Now),
		channels: repository.NewChannels(deps.Provider),
		epg:      repository.NewEPG(deps.Provider, clock),
		timers:   repository.NewTimers(deps.Provider, clock),
		movies:   repository.NewMovies(deps.Provider),
		device:   repository.NewDevice(deps.Provider),
	}
	s.health.RegisterChecker(health.NewDatabaseChecker(deps.Store))
	s.health.RegisterChecker(health.NewReceiverChecker(s.device, 0))
	return s
}

// Handler builds the routed handler with the middleware stack applied.
func (s *Server) Handler(stack middleware.StackConfig) http.Handler {
	r := middleware.NewRouter(stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", s.handleListDevices)
		r.Post("/devices", s.handleAddDevice)
		r.Put("/devices/{id}/current", s.handleSetCurrentDevice)
		r.Delete("/devices/{id}", s.handleDeleteDevice)

		r.Get("/bouquets", s.handleBouquets)
		r.Get("/bouquets/channels", s.handleChannels)

		r.Get("/epg/service", s.handleEPGService)
		r.Get("/epg/search", s.handleEPGSearch)
		r.Get("/epg/now", s.handleEPGNow)
		r.Get("/epg/multi", s.handleEPGMulti)

		r.Get("/timers", s.handleListTimers)
		r.Post("/timers", s.handleAddTimer)
		r.Put("/timers/{id}", s.handleChangeTimer)
		r.Delete("/timers", s.handleDeleteTimer)
		r.Post("/timers/toggle", s.handleToggleTimer)

		r.Get("/movies", s.handleListMovies)
		r.Delete("/movies", s.handleDeleteMovie)

		r.Get("/device/info", s.handleDeviceInfo)
		r.Get("/device/status", s.handleDeviceStatus)
		r.Get("/device/signal", s.handleDeviceSignal)
		r.Post("/remote/{key}", s.handleRemote)
		r.Post("/zap", s.handleZap)
		r.Post("/power", s.handlePower)
		r.Post("/volume", s.handleVolume)
		r.Post("/message", s.handleMessage)
		r.Get("/stream", s.handleStreamURL)

		r.Get("/search-history/{scope}", s.handleSearchHistory)
		r.Post("/search-history/{scope}", s.handleAddSearch)
		r.Delete("/search-history/{scope}", s.handleClearSearchHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", Status: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Status: "method_not_allowed"})
	})
	return r
}
