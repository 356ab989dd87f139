// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/timeutil"
)

// PreferenceSource reads stored preferences overlaid on their defaults.
type PreferenceSource interface {
	Preferences(ctx context.Context) (map[string]string, error)
}

// Settings are the typed user preferences.
type Settings struct {
	Theme             string               `json:"theme"`
	Clock24h          bool                 `json:"clock_24h"`
	DateOrder         timeutil.DateOrder   `json:"date_order"`
	EPGDays           int                  `json:"epg_days"`
	RemoteVibrate     bool                 `json:"remote_vibrate"`
	ShowPicons        bool                 `json:"show_picons"`
	DefaultAfterEvent openwebif.AfterEvent `json:"default_after_event"`
	OnboardingDone    bool                 `json:"onboarding_done"`
}

// LoadSettings reads preferences into Settings. Unparsable values fall back
// to their defaults.
func LoadSettings(ctx context.Context, src PreferenceSource) (Settings, error) {
	prefs, err := src.Preferences(ctx)
	if err != nil {
		return Settings{}, err
	}
	logger := xglog.WithComponentFromContext(ctx, "repository")

	str := func(key string) string { return prefs[key] }
	boolean := func(key string) bool {
		if b, err := strconv.ParseBool(prefs[key]); err == nil {
			return b
		}
		logger.Warn().Str("key", key).Str("value", prefs[key]).Msg("invalid boolean preference, using default")
		b, _ := strconv.ParseBool(store.DefaultPreferences[key])
		return b
	}
	integer := func(key string, lo, hi int) int {
		if n, err := strconv.Atoi(prefs[key]); err == nil && n >= lo && n <= hi {
			return n
		}
		logger.Warn().Str("key", key).Str("value", prefs[key]).Msg("invalid integer preference, using default")
		n, _ := strconv.Atoi(store.DefaultPreferences[key])
		return n
	}

	order := timeutil.DateOrder(str(store.PrefDateOrder))
	switch order {
	case timeutil.OrderYMD, timeutil.OrderDMY, timeutil.OrderMDY:
	default:
		order = timeutil.OrderYMD
	}

	return Settings{
		Theme:             str(store.PrefTheme),
		Clock24h:          boolean(store.PrefClock24h),
		DateOrder:         order,
		EPGDays:           integer(store.PrefEPGDays, 1, 14),
		RemoteVibrate:     boolean(store.PrefRemoteVibrate),
		ShowPicons:        boolean(store.PrefShowPicons),
		DefaultAfterEvent: openwebif.AfterEvent(integer(store.PrefDefaultAfterEvent, 0, 3)),
		OnboardingDone:    boolean(store.PrefOnboardingDone),
	}, nil
}

// NormalizePreference validates value for a known key and returns its stored
// form. Unknown keys are passed through unchanged.
func NormalizePreference(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	invalid := func(want string) (string, error) {
		return "", fmt.Errorf("%w: %s=%q, want %s", store.ErrInvalidPrefValue, key, value, want)
	}
	switch key {
	case store.PrefClock24h, store.PrefRemoteVibrate, store.PrefShowPicons, store.PrefOnboardingDone:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalid("true or false")
		}
		return strconv.FormatBool(b), nil
	case store.PrefTheme:
		switch v := strings.ToLower(value); v {
		case "system", "light", "dark":
			return v, nil
		}
		return invalid("system, light or dark")
	case store.PrefDateOrder:
		switch v := timeutil.DateOrder(strings.ToLower(value)); v {
		case timeutil.OrderYMD, timeutil.OrderDMY, timeutil.OrderMDY:
			return string(v), nil
		}
		return invalid("ymd, dmy or mdy")
	case store.PrefEPGDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 14 {
			return invalid("1..14")
		}
		return strconv.Itoa(n), nil
	case store.PrefDefaultAfterEvent:
		ae, ok := openwebif.ParseAfterEvent(value)
		if !ok {
			return invalid("nothing, standby, deepstandby or auto")
		}
		return strconv.Itoa(int(ae)), nil
	}
	return value, nil
}
