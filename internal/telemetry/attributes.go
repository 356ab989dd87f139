// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Receiver attributes
	DeviceIDKey   = "receiver.device_id"
	DeviceNameKey = "receiver.name"
	ServiceRefKey = "receiver.service_ref"
	BouquetRefKey = "receiver.bouquet_ref"

	// View state attributes
	ResourceKey = "view.resource"
	StatusKey   = "view.status"
	ItemsKey    = "view.items"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ReceiverAttributes describes the receiver and the service or bouquet a span
// targets. Empty values are omitted.
func ReceiverAttributes(deviceID, deviceName, serviceRef, bouquetRef string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if deviceID != "" {
		attrs = append(attrs, attribute.String(DeviceIDKey, deviceID))
	}
	if deviceName != "" {
		attrs = append(attrs, attribute.String(DeviceNameKey, deviceName))
	}
	if serviceRef != "" {
		attrs = append(attrs, attribute.String(ServiceRefKey, serviceRef))
	}
	if bouquetRef != "" {
		attrs = append(attrs, attribute.String(BouquetRefKey, bouquetRef))
	}
	return attrs
}

// RefreshAttributes describes a finished view state refresh.
func RefreshAttributes(resource, status string, items int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ResourceKey, resource),
		attribute.String(StatusKey, status),
		attribute.Int(ItemsKey, items),
	}
}
