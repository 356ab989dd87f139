// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCode(t *testing.T) {
	tests := map[string]int{
		"power":  116,
		"OK":     352,
		" exit ": 174,
		"back":   174,
		"0":      11,
		"1":      2,
		"9":      10,
		"vol+":   115,
		"guide":  365,
		"352":    352,
	}
	for in, want := range tests {
		got, err := KeyCode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "warp", "-1", "99999"} {
		_, err := KeyCode(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestKeyNamesCoverButtons(t *testing.T) {
	names := KeyNames()
	assert.IsIncreasing(t, names)
	for _, want := range []string{"power", "0", "9", "up", "ok", "red", "blue", "record", "subtitle", "next"} {
		assert.Contains(t, names, want)
	}
	for _, name := range names {
		_, err := KeyCode(name)
		assert.NoError(t, err, name)
	}
}
