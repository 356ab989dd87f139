// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "unit", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("store")
	l.Debug().Str(FieldEvent, "store.migrate").Msg("migrating")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "unit", entry[FieldService])
	assert.Equal(t, "v0.0.1", entry[FieldVersion])
	assert.Equal(t, "store", entry[FieldComponent])
	assert.Equal(t, "store.migrate", entry[FieldEvent])
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestConfigureInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestConfigureWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "e2remote.log")

	var buf bytes.Buffer
	Configure(Config{Output: &buf, File: path})
	t.Cleanup(func() {
		_ = Close()
		Configure(Config{})
	})

	l := Base()
	l.Info().Msg("to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
}

func TestDeriveAddsFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Derive(func(c *zerolog.Context) { *c = c.Str("k", "v") })
	l.Info().Msg("derived")
	assert.Contains(t, buf.String(), `"k":"v"`)
}
