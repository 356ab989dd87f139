// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReceiverBreakerMetrics(t *testing.T) {
	SetReceiverBreaker("living-room", BreakerOpen)
	assert.Equal(t, 2.0, testutil.ToFloat64(receiverBreakerState.WithLabelValues("living-room")))
	SetReceiverBreaker("living-room", BreakerClosed)
	assert.Equal(t, 0.0, testutil.ToFloat64(receiverBreakerState.WithLabelValues("living-room")))

	before := testutil.ToFloat64(receiverBreakerOpened.WithLabelValues("living-room", "half-open"))
	RecordReceiverBreakerOpened("living-room", "half-open")
	assert.Equal(t, before+1, testutil.ToFloat64(receiverBreakerOpened.WithLabelValues("living-room", "half-open")))
}

func TestRecordRefreshCounts(t *testing.T) {
	before := testutil.ToFloat64(refreshTotal.WithLabelValues("unit-res", "loaded"))
	RecordRefresh("unit-res", "loaded")
	RecordRefresh("unit-res", "loaded")
	assert.Equal(t, before+2, testutil.ToFloat64(refreshTotal.WithLabelValues("unit-res", "loaded")))
}

func TestObserveHTTPRequestUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404"))
	ObserveHTTPRequest("", "GET", 404, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404")))
}
