// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/e2remote/internal/openwebif"
)

var timerIDEncoding = base64.URLEncoding.WithPadding(base64.NoPadding)

// MakeTimerID creates a stable, URL-safe ID from a timer's identity:
// base64url(serviceRef|begin|end).
func MakeTimerID(key openwebif.TimerKey) string {
	raw := fmt.Sprintf("%s|%d|%d", key.ServiceRef, key.Begin, key.End)
	return timerIDEncoding.EncodeToString([]byte(raw))
}

// ParseTimerID decodes an ID made by MakeTimerID. Service references may
// contain '|' (stream URLs), so begin and end are taken from the right.
func ParseTimerID(id string) (openwebif.TimerKey, error) {
	decoded, err := timerIDEncoding.DecodeString(id)
	if err != nil {
		return openwebif.TimerKey{}, fmt.Errorf("%w: invalid base64: %v", ErrInvalidTimer, err)
	}
	s := string(decoded)
	endIdx := strings.LastIndexByte(s, '|')
	if endIdx < 0 {
		return openwebif.TimerKey{}, fmt.Errorf("%w: malformed id", ErrInvalidTimer)
	}
	beginIdx := strings.LastIndexByte(s[:endIdx], '|')
	if beginIdx < 0 {
		return openwebif.TimerKey{}, fmt.Errorf("%w: malformed id", ErrInvalidTimer)
	}

	key := openwebif.TimerKey{ServiceRef: s[:beginIdx]}
	if key.ServiceRef == "" {
		return openwebif.TimerKey{}, fmt.Errorf("%w: empty service reference", ErrInvalidTimer)
	}
	if key.Begin, err = strconv.ParseInt(s[beginIdx+1:endIdx], 10, 64); err != nil {
		return openwebif.TimerKey{}, fmt.Errorf("%w: invalid begin time", ErrInvalidTimer)
	}
	if key.End, err = strconv.ParseInt(s[endIdx+1:], 10, 64); err != nil {
		return openwebif.TimerKey{}, fmt.Errorf("%w: invalid end time", ErrInvalidTimer)
	}
	if key.Begin >= key.End {
		return openwebif.TimerKey{}, fmt.Errorf("%w: begin time must be before end time", ErrInvalidTimer)
	}
	return key, nil
}
