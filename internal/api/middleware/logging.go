// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"time"

	"github.com/ManuGH/e2remote/internal/log"
	"github.com/rs/zerolog"
)

// AccessLog writes one structured line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)

		logger := log.WithComponentFromContext(r.Context(), "api")
		var ev *zerolog.Event
		switch {
		case sw.status >= 500:
			ev = logger.Error()
		case sw.status >= 400:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev.Str(log.FieldEvent, "http.request").
			Str("method", r.Method).
			Str(log.FieldPath, r.URL.Path).
			Str("route", routePattern(r)).
			Int(log.FieldStatus, sw.status).
			Int("bytes", sw.bytes).
			Dur(log.FieldDuration, time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request served")
	})
}
