// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bouquetsLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "e2remote_bouquets_loaded",
		Help: "Number of bouquets returned by the last load, by kind",
	}, []string{"kind"}) // kind=tv|radio

	servicesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "e2remote_services_loaded_total",
		Help: "Total number of services loaded from bouquets",
	})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2remote_refresh_total",
		Help: "View state refreshes by resource and resulting status",
	}, []string{"resource", "status"}) // status=loaded|no_device|no_network|canceled

	timerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2remote_timer_operations_total",
		Help: "Timer operations by kind and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|conflict|not_found|failure
)

// SetBouquetsLoaded records how many bouquets the last load returned.
func SetBouquetsLoaded(kind string, n int) {
	bouquetsLoaded.WithLabelValues(kind).Set(float64(n))
}

// AddServicesLoaded counts services returned from a bouquet.
func AddServicesLoaded(n int) {
	servicesLoaded.Add(float64(n))
}

// RecordRefresh counts a finished view state refresh.
func RecordRefresh(resource, status string) {
	refreshTotal.WithLabelValues(resource, status).Inc()
}

// RecordTimerOperation counts a timer add/change/delete/toggle outcome.
func RecordTimerOperation(operation, outcome string) {
	timerOperations.WithLabelValues(operation, outcome).Inc()
}
