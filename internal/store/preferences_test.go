// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesDefaultsAndOverrides(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	theme, err := s.GetPreference(ctx, PrefTheme)
	require.NoError(t, err)
	assert.Equal(t, "system", theme)

	days, err := s.GetInt(ctx, PrefEPGDays)
	require.NoError(t, err)
	assert.Equal(t, 7, days)

	require.NoError(t, s.SetPreference(ctx, PrefTheme, "dark"))
	require.NoError(t, s.SetPreference(ctx, PrefTheme, "light"))
	theme, err = s.GetPreference(ctx, PrefTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)

	require.NoError(t, s.SetBool(ctx, PrefOnboardingDone, true))
	done, err := s.GetBool(ctx, PrefOnboardingDone)
	require.NoError(t, err)
	assert.True(t, done)

	all, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", all[PrefTheme])
	assert.Equal(t, "true", all[PrefShowPicons])

	require.NoError(t, s.DeletePreference(ctx, PrefTheme))
	theme, err = s.GetPreference(ctx, PrefTheme)
	require.NoError(t, err)
	assert.Equal(t, "system", theme)

	unknown, err := s.GetPreference(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestPreferenceTypedErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, PrefRemoteVibrate, "sometimes"))
	_, err := s.GetBool(ctx, PrefRemoteVibrate)
	assert.ErrorIs(t, err, ErrInvalidPrefValue)

	assert.ErrorIs(t, s.SetPreference(ctx, "", "x"), ErrInvalidPrefValue)
}

func TestPreferenceJSON(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	type layout struct {
		Columns int      `json:"columns"`
		Hidden  []string `json:"hidden"`
	}
	want := layout{Columns: 3, Hidden: []string{"radio"}}
	require.NoError(t, s.SetJSON(ctx, "ui.layout", want))

	var got layout
	require.NoError(t, s.GetJSON(ctx, "ui.layout", &got))
	assert.Equal(t, want, got)

	untouched := layout{Columns: 9}
	require.NoError(t, s.GetJSON(ctx, "ui.missing", &untouched))
	assert.Equal(t, 9, untouched.Columns)
}
