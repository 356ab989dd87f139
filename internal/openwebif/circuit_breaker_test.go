// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTest = errors.New("test error")

func failing() error { return errTest }
func ok() error      { return nil }

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test-open", 3, 30*time.Second)
	assert.Equal(t, StateClosed, cb.State())

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errTest)
		assert.Equal(t, StateClosed, cb.State())
	}
	assert.ErrorIs(t, cb.Execute(failing), errTest)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test-reset", 2, time.Minute)
	assert.Error(t, cb.Execute(failing))
	assert.NoError(t, cb.Execute(ok))
	assert.Error(t, cb.Execute(failing))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker("test-half-open", 1, 10*time.Second)
	cb.now = func() time.Time { return now }

	assert.Error(t, cb.Execute(failing))
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	assert.Error(t, cb.Execute(failing))
	assert.Equal(t, StateOpen, cb.State(), "a failed trial request reopens")

	now = now.Add(11 * time.Second)
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker("test-disabled", -1, time.Second)
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errTest)
	}
	assert.Equal(t, StateClosed, cb.State())

	var nilBreaker *CircuitBreaker
	assert.NoError(t, nilBreaker.Execute(ok))
}
