// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/viewmodel"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// errBadRequest marks malformed client input that no lower layer classified.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error     string   `json:"error"`
	Status    string   `json:"status"`
	Conflicts []string `json:"conflicts,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps an error to an HTTP status code and a machine-readable status.
func classify(err error) (int, string) {
	switch viewmodel.ResolveStatus(err) {
	case viewmodel.StatusNoDevice:
		return http.StatusConflict, "no_device"
	case viewmodel.StatusNoNetwork:
		if errors.Is(err, openwebif.ErrTimeout) {
			return http.StatusGatewayTimeout, "no_network"
		}
		return http.StatusBadGateway, "no_network"
	}
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, repository.ErrInvalidArgument),
		errors.Is(err, repository.ErrInvalidTimer),
		errors.Is(err, store.ErrInvalidDevice),
		errors.Is(err, store.ErrInvalidScope),
		errors.Is(err, store.ErrInvalidPrefValue):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, store.ErrDeviceNotFound), errors.Is(err, openwebif.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrDuplicateDevice), errors.Is(err, openwebif.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, openwebif.ErrForbidden):
		return http.StatusBadGateway, "upstream_forbidden"
	case errors.Is(err, openwebif.ErrUpstreamError), errors.Is(err, openwebif.ErrUpstreamBadResponse):
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError writes the JSON error body for err and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)
	if code >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).
			Str(log.FieldEvent, "api.request_failed").
			Str(log.FieldPath, r.URL.Path).
			Int(log.FieldStatus, code).
			Msg("request failed")
	}
	body := errorBody{
		Error:     err.Error(),
		Status:    status,
		RequestID: log.RequestIDFromContext(r.Context()),
	}
	if openwebif.IsTimerConflict(err) {
		body.Conflicts = openwebif.ConflictingTimers(err)
	}
	writeJSON(w, code, body)
}

// decodeJSON strictly decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
