// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/e2remote/internal/metrics"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // Normal operation, requests allowed
	StateOpen                  // Circuit open, requests blocked
	StateHalfOpen              // Testing if the receiver recovered
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// CircuitBreaker stops hammering a receiver that is switched off or unreachable.
type CircuitBreaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	failureThreshold int
	resetTimeout     time.Duration
	lastFailure      time.Time
	now              func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker. A threshold <= 0 disables it.
func NewCircuitBreaker(name string, threshold int, resetTimeout time.Duration) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: threshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
	metrics.SetReceiverBreaker(name, cb.state.gauge())
	return cb
}

// Execute runs fn if the circuit is closed or half-open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb == nil || cb.failureThreshold <= 0 {
		return fn()
	}
	if !cb.allowRequest() {
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	default:
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.transition(StateHalfOpen)
			return true
		}
		return false
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()

	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		if cb.state != StateOpen {
			metrics.RecordReceiverBreakerOpened(cb.name, cb.state.String())
		}
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.transition(StateClosed)
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}
	cb.state = next
	metrics.SetReceiverBreaker(cb.name, next.gauge())
}

// State returns the current state (thread-safe).
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

func (s State) gauge() int {
	switch s {
	case StateOpen:
		return metrics.BreakerOpen
	case StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}
