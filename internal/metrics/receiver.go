// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauge values of e2remote_receiver_breaker_state.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

var (
	receiverBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "e2remote_receiver_breaker_state",
		Help: "Circuit breaker of each receiver client (0 closed, 1 half-open, 2 open)",
	}, []string{"receiver"})

	receiverBreakerOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2remote_receiver_breaker_opened_total",
		Help: "Times a receiver circuit breaker opened, by the state it left",
	}, []string{"receiver", "from"}) // from=closed|half-open
)

// SetReceiverBreaker publishes the breaker state of a receiver client.
func SetReceiverBreaker(receiver string, state int) {
	receiverBreakerState.WithLabelValues(receiver).Set(float64(state))
}

// RecordReceiverBreakerOpened counts a breaker opening. A reopen after a
// failed half-open request is reported with from=half-open.
func RecordReceiverBreakerOpened(receiver, from string) {
	receiverBreakerOpened.WithLabelValues(receiver, from).Inc()
}
