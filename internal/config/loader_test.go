// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := NewLoader("", "1.2.3").Load()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 10, cfg.Search.HistoryLimit)
	assert.Equal(t, filepath.Join(cfg.DataDir, "e2remote.db"), cfg.DatabasePath())
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", `
data_dir: /tmp/e2remote-file
log:
  level: debug
client:
  timeout: 3s
  max_retries: 4
search:
  history_limit: 25
`)
	t.Setenv(EnvClientRetries, "1")
	t.Setenv(EnvListen, "0.0.0.0:9000")

	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/e2remote-file", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout, "file overrides default")
	assert.Equal(t, 1, cfg.Client.MaxRetries, "env overrides file")
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, 25, cfg.Search.HistoryLimit)
	assert.Equal(t, 2*time.Second, cfg.Client.MaxBackoff, "untouched keys keep defaults")
}

func TestLoadStrictUnknownField(t *testing.T) {
	path := writeFile(t, "config.yaml", "client:\n  timeuot: 3s\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n---\nlog:\n  level: debug\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := writeFile(t, "config.json", "{}")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	path := writeFile(t, "config.yml", "")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Client, cfg.Client)
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvClientTimeout, "soon")
	t.Setenv(EnvTelemetryEnabled, "maybe")

	cfg, err := NewLoader("", "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestUnknownEnvKeys(t *testing.T) {
	l := NewLoader("", "dev")
	l.environ = func() []string {
		return []string{"E2REMOTE_LOG_LEVEL=debug", "E2REMOTE_LOG_LEVL=debug", "E2REMOTE_DEVICE=box", "HOME=/root"}
	}
	_, _ = l.Load()
	assert.Equal(t, []string{"E2REMOTE_LOG_LEVL"}, l.UnknownEnvKeys())
}

func TestLoadWarnsOnUnknownEnv(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	var buf bytes.Buffer
	log.Configure(log.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { log.Configure(log.Config{Level: "info"}) })

	l := NewLoader("", "dev")
	l.environ = func() []string { return []string{"E2REMOTE_LOG_LEVL=debug"} }
	_, err := l.Load()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "config.unknown_env")
	assert.Contains(t, buf.String(), "E2REMOTE_LOG_LEVL")
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "YES": true, "on": true, "0": false, "off": false, "No": false} {
		t.Setenv("E2REMOTE_TEST_BOOL", in)
		assert.Equal(t, want, ParseBool("E2REMOTE_TEST_BOOL", !want), in)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Defaults()
	cfg.DataDir = dir
	cfg.Client.Timeout = 7 * time.Second
	require.NoError(t, Save(path, cfg, false))
	assert.Error(t, Save(path, cfg, false), "refuses to overwrite")
	require.NoError(t, Save(path, cfg, true))

	loaded, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, loaded.Client.Timeout)
	assert.Equal(t, dir, loaded.DataDir)
}
