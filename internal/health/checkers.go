// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
)

// IntegrityChecker is implemented by the local store.
type IntegrityChecker interface {
	Check(ctx context.Context, full bool) ([]string, error)
}

// DatabaseChecker runs a quick integrity check against the local database.
type DatabaseChecker struct {
	db IntegrityChecker
}

// NewDatabaseChecker creates a checker for the local database.
func NewDatabaseChecker(db IntegrityChecker) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

func (c *DatabaseChecker) Name() string { return "database" }

func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	problems, err := c.db.Check(ctx, false)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if len(problems) > 0 {
		return CheckResult{Status: StatusUnhealthy, Error: strings.Join(problems, "; ")}
	}
	return CheckResult{Status: StatusHealthy, Message: "quick_check ok"}
}

// StatusProber is implemented by the receiver repository.
type StatusProber interface {
	Status(ctx context.Context) (*openwebif.StatusInfo, error)
}

// ReceiverChecker asks the selected receiver for its status. A missing or
// unreachable receiver degrades the service without making it unready.
type ReceiverChecker struct {
	receiver StatusProber
	timeout  time.Duration
}

// NewReceiverChecker creates a checker bounded by timeout; zero means 3s.
func NewReceiverChecker(receiver StatusProber, timeout time.Duration) *ReceiverChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ReceiverChecker{receiver: receiver, timeout: timeout}
}

func (c *ReceiverChecker) Name() string { return "receiver" }

func (c *ReceiverChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	st, err := c.receiver.Status(ctx)
	switch {
	case err == nil:
		msg := "reachable"
		if bool(st.InStandby) {
			msg = "reachable, in standby"
		}
		return CheckResult{Status: StatusHealthy, Message: msg}
	case errors.Is(err, repository.ErrNoDevice):
		return CheckResult{Status: StatusDegraded, Message: "no receiver configured"}
	case openwebif.IsNetworkError(err):
		return CheckResult{Status: StatusDegraded, Message: "receiver unreachable", Error: err.Error()}
	}
	return CheckResult{Status: StatusDegraded, Error: err.Error()}
}
