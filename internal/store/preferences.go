// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Known preference keys.
const (
	PrefTheme             = "ui.theme"
	PrefClock24h          = "ui.clock_24h"
	PrefDateOrder         = "ui.date_order"
	PrefEPGDays           = "epg.days"
	PrefRemoteVibrate     = "remote.vibrate"
	PrefShowPicons        = "channels.show_picons"
	PrefDefaultAfterEvent = "timers.default_after_event"
	PrefOnboardingDone    = "onboarding.done"
)

// DefaultPreferences are returned for keys that were never set.
var DefaultPreferences = map[string]string{
	PrefTheme:             "system", // system, light, dark
	PrefClock24h:          "true",
	PrefDateOrder:         "ymd", // ymd, dmy, mdy
	PrefEPGDays:           "7",
	PrefRemoteVibrate:     "true",
	PrefShowPicons:        "true",
	PrefDefaultAfterEvent: "3", // auto
	PrefOnboardingDone:    "false",
}

// GetPreference returns the stored value, the default for known keys, or "".
func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPreferences[key], nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

// SetPreference stores a value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidPrefValue)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// GetBool parses a preference as a boolean.
func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := s.GetPreference(ctx, key)
	if err != nil || v == "" {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidPrefValue, key, v)
	}
	return b, nil
}

// SetBool stores a boolean preference.
func (s *Store) SetBool(ctx context.Context, key string, v bool) error {
	return s.SetPreference(ctx, key, strconv.FormatBool(v))
}

// GetInt parses a preference as an integer.
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	v, err := s.GetPreference(ctx, key)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPrefValue, key, v)
	}
	return n, nil
}

// GetJSON decodes a JSON preference into v. Unset keys leave v untouched.
func (s *Store) GetJSON(ctx context.Context, key string, v any) error {
	value, err := s.GetPreference(ctx, key)
	if err != nil || value == "" {
		return err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPrefValue, key, err)
	}
	return nil
}

// SetJSON stores v as JSON.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal preference %s: %w", key, err)
	}
	return s.SetPreference(ctx, key, string(data))
}

// DeletePreference resets a key to its default.
func (s *Store) DeletePreference(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// Preferences returns the defaults overlaid with every stored value.
func (s *Store) Preferences(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(DefaultPreferences))
	for k, v := range DefaultPreferences {
		out[k] = v
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM preferences")
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
