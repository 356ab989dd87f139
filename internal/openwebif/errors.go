// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("upstream: resource not found")
	ErrForbidden           = errors.New("upstream: access forbidden")
	ErrConflict            = errors.New("upstream: conflict")
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
)

const maxErrorBody = 512

// OWIError is a rich error type that wraps the sentinel errors with context.
type OWIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *OWIError) Error() string {
	msg := fmt.Sprintf("openwebif: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the nested cause to errors.Is/As.
func (e *OWIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// IsNetworkError reports whether err means the receiver could not be reached at all.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrCircuitOpen)
}

// wrapError classifies a transport error or HTTP status into a sentinel-backed OWIError.
func wrapError(operation string, err error, status int, body []byte) error {
	owiErr := &OWIError{
		Operation: operation,
		Status:    status,
		Body:      sanitizeBody(body),
		Err:       err,
	}

	switch {
	case err != nil && isTimeout(err):
		owiErr.Sentinel = ErrTimeout
	case errors.Is(err, ErrCircuitOpen):
		owiErr.Sentinel = ErrUpstreamUnavailable
	case err != nil:
		owiErr.Sentinel = ErrUpstreamUnavailable
	case status == http.StatusNotFound:
		owiErr.Sentinel = ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		owiErr.Sentinel = ErrForbidden
	case status == http.StatusConflict:
		owiErr.Sentinel = ErrConflict
	case status >= http.StatusInternalServerError:
		owiErr.Sentinel = ErrUpstreamError
	default:
		owiErr.Sentinel = ErrUpstreamBadResponse
	}
	return owiErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var secretPattern = regexp.MustCompile(`(?i)\b(token|sid|session|password|passwd|pass)=([^\s&"',;]+)`)

// Redact masks credential-looking query values in s.
func Redact(s string) string {
	return secretPattern.ReplaceAllString(s, "$1=[REDACTED]")
}

func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return Redact(s)
}

// resultError converts a {"result": false, "message": "..."} envelope into an error.
func resultError(operation, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "receiver reported failure"
	}
	return &OWIError{
		Sentinel:  ErrUpstreamBadResponse,
		Operation: operation,
		Status:    http.StatusOK,
		Body:      Redact(msg),
	}
}
