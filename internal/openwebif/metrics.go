// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes. Operations are a fixed set of names ("zap", "timerlist",
// ...) so label cardinality stays bounded regardless of query strings.
const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeServerError = "server_error"
	outcomeTimeout     = "timeout"
	outcomeTransport   = "transport"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "e2remote_openwebif_attempts_total",
			Help: "OpenWebIF request attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	attemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "e2remote_openwebif_attempt_duration_seconds",
			Help:    "Duration of a single OpenWebIF request attempt",
			Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 8),
		},
		[]string{"operation"},
	)
	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "e2remote_openwebif_retries_total",
			Help: "OpenWebIF read attempts that were followed by a retry",
		},
		[]string{"operation"},
	)
)

func attemptOutcome(err error, status int) string {
	switch {
	case err != nil && isTimeout(err):
		return outcomeTimeout
	case err != nil:
		return outcomeTransport
	case status >= 500:
		return outcomeServerError
	case status >= 400:
		return outcomeRejected
	}
	return outcomeOK
}

func recordAttempt(operation string, status int, duration time.Duration, err error, retry bool) {
	attemptsTotal.WithLabelValues(operation, attemptOutcome(err, status)).Inc()
	attemptDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if retry {
		retriesTotal.WithLabelValues(operation).Inc()
	}
}
