// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package viewmodel holds observable screen state: a loading status, the
// fetched data, and the search text applied to it.
package viewmodel

import (
	"errors"
	"fmt"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
)

// Status is the four-valued screen state.
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusNoDevice
	StatusNoNetwork
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusNoDevice:
		return "no_device"
	case StatusNoNetwork:
		return "no_network"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText renders the status by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ResolveStatus maps a fetch result to a status. Errors that are neither a
// missing device nor an unreachable receiver still count as loaded; the
// caller shows the error next to whatever data it has.
func ResolveStatus(err error) Status {
	if err == nil {
		return StatusLoaded
	}
	if errors.Is(err, repository.ErrNoDevice) {
		return StatusNoDevice
	}
	if openwebif.IsNetworkError(err) {
		return StatusNoNetwork
	}
	return StatusLoaded
}
