// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"errors"
	"net/http"
	"strings"
)

// Timer calls answer result=false with free text in the box's UI language.
// These tokens cover the English and German images.
var (
	conflictTokens = []string{"conflict", "overlap", "konflikt", "überschneidung", "ueberschneidung"}
	notFoundTokens = []string{"not found", "nicht gefunden", "no matching", "404"}
)

// timerOperationError turns a refused timer call into an *OWIError whose
// sentinel is ErrConflict, ErrNotFound or ErrUpstreamBadResponse.
func timerOperationError(operation, message string) error {
	message = strings.TrimSpace(message)
	owiErr := &OWIError{
		Sentinel:  ErrUpstreamBadResponse,
		Operation: operation,
		Status:    http.StatusBadRequest,
		Body:      Redact(message),
	}
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, conflictTokens):
		owiErr.Sentinel, owiErr.Status = ErrConflict, http.StatusConflict
	case containsAny(lower, notFoundTokens):
		owiErr.Sentinel, owiErr.Status = ErrNotFound, http.StatusNotFound
	}
	return owiErr
}

// IsTimerConflict reports whether err is the receiver refusing a timer that
// overlaps an existing recording.
func IsTimerConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsTimerNotFound reports whether err is the receiver not knowing the timer
// or EPG event a call referred to.
func IsTimerNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ConflictingTimers returns the names of the recordings the receiver listed
// as clashing ("Conflicting Timer(s) detected! A / B"). It returns nil when
// err is not a timer conflict or the message names none.
func ConflictingTimers(err error) []string {
	var owiErr *OWIError
	if !IsTimerConflict(err) || !errors.As(err, &owiErr) {
		return nil
	}
	_, list, ok := strings.Cut(owiErr.Body, "!")
	if !ok {
		return nil
	}
	var names []string
	for _, name := range strings.Split(list, " / ") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
