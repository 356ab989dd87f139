// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Identity fields
	FieldRequestID  = "request_id"
	FieldDeviceID   = "device_id"
	FieldServiceRef = "service_ref"
	FieldBouquetRef = "bouquet_ref"
	FieldTimerID    = "timer_id"

	// Transport fields
	FieldOperation = "operation"
	FieldBaseURL   = "base_url"
	FieldStatus    = "status"
	FieldAttempt   = "attempt"
	FieldDuration  = "duration"
	FieldPath      = "path"
)
