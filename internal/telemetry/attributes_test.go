// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestHTTPAttributes(t *testing.T) {
	m := attrMap(HTTPAttributes("GET", "/api/timerlist", "/api/timerlist?", 200))
	assert.Len(t, m, 4)
	assert.Equal(t, "GET", m[HTTPMethodKey].AsString())
	assert.Equal(t, "/api/timerlist", m[HTTPRouteKey].AsString())
	assert.Equal(t, int64(200), m[HTTPStatusCodeKey].AsInt64())
}

func TestReceiverAttributesOmitsEmpty(t *testing.T) {
	tests := []struct {
		name                         string
		id, deviceName, sref, bouquet string
		wantLen                      int
	}{
		{name: "all", id: "d1", deviceName: "Living room", sref: "1:0:1:", bouquet: "1:7:1:", wantLen: 4},
		{name: "device only", id: "d1", wantLen: 1},
		{name: "none", wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ReceiverAttributes(tt.id, tt.deviceName, tt.sref, tt.bouquet), tt.wantLen)
		})
	}
}

func TestRefreshAttributes(t *testing.T) {
	m := attrMap(RefreshAttributes("timers", "loaded", 7))
	assert.Equal(t, "timers", m[ResourceKey].AsString())
	assert.Equal(t, "loaded", m[StatusKey].AsString())
	assert.Equal(t, int64(7), m[ItemsKey].AsInt64())
}
