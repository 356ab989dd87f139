// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ManuGH/e2remote/internal/config"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// setup isolates the CLI in a fresh data directory.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvDevice, "")
	return dir
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := runCLI(t, args...)
	require.Equal(t, 0, res.code, "e2remote %v: %s", args, res.stderr)
	return res.stdout
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func addFakeDevice(t *testing.T, name string) *fake.Receiver {
	t.Helper()
	r := fake.New()
	t.Cleanup(r.Close)
	host, port := r.HostPort()
	mustRun(t, "device", "add", name, host, "--port", strconv.Itoa(port))
	return r
}

func TestDeviceLifecycle(t *testing.T) {
	setup(t)
	addFakeDevice(t, "Living Room")
	addFakeDevice(t, "Bedroom")

	devices := decodeJSON[[]deviceRow](t, mustRun(t, "--json", "device", "list"))
	require.Len(t, devices, 2)
	assert.Equal(t, "Bedroom", devices[0].Name)
	assert.False(t, devices[0].Current)
	assert.True(t, devices[1].Current, "first added device becomes current")

	out := mustRun(t, "device", "use", "bedroom")
	assert.Contains(t, out, "Using Bedroom")
	devices = decodeJSON[[]deviceRow](t, mustRun(t, "--json", "device", "list"))
	assert.True(t, devices[0].Current)

	res := runCLI(t, "device", "add", "Living Room", "10.0.0.1")
	assert.Equal(t, exitFailure, res.code)

	exported := filepath.Join(t.TempDir(), "devices.json")
	assert.Contains(t, mustRun(t, "device", "export", exported), "Exported 2 device(s)")

	mustRun(t, "device", "remove", "Bedroom")
	devices = decodeJSON[[]deviceRow](t, mustRun(t, "--json", "device", "list"))
	require.Len(t, devices, 1)
	assert.Equal(t, "Living Room", devices[0].Name)
}

func TestNoDeviceExitCode(t *testing.T) {
	setup(t)
	res := runCLI(t, "info")
	assert.Equal(t, exitNoDevice, res.code)
	assert.Contains(t, res.stderr, "device add")
}

func TestBouquetsAndChannels(t *testing.T) {
	setup(t)
	addFakeDevice(t, "Living Room")

	type bouquet struct {
		Ref  string `json:"ref"`
		Name string `json:"name"`
	}
	bouquets := decodeJSON[[]bouquet](t, mustRun(t, "--json", "tv"))
	require.NotEmpty(t, bouquets)
	assert.Equal(t, "Favourites (TV)", bouquets[0].Name)

	channels := decodeJSON[[]repository.Channel](t, mustRun(t, "--json", "tv", "1", "--search", "zdf"))
	require.Len(t, channels, 1)
	assert.Equal(t, fake.ZDFRef, channels[0].Ref)

	history := decodeJSON[map[string][]string](t, mustRun(t, "--json", "history", "tv"))
	assert.Equal(t, []string{"zdf"}, history["tv"])

	mustRun(t, "history", "tv", "--clear")
	history = decodeJSON[map[string][]string](t, mustRun(t, "--json", "history", "tv"))
	assert.Empty(t, history["tv"])

	res := runCLI(t, "tv", "no such bouquet")
	assert.Equal(t, exitFailure, res.code)
}

func TestTimersAddAndList(t *testing.T) {
	setup(t)
	r := addFakeDevice(t, "Living Room")

	out := mustRun(t, "timers", "add", "--ref", fake.ARDRef, "--name", "Tatort",
		"--begin", "tomorrow 20:15", "--duration", "90m", "--after-event", "standby")
	assert.Contains(t, out, "Timer added: Tatort")

	var found *fake.Timer
	for _, tm := range r.Timers() {
		if tm.Name == "Tatort" {
			found = &tm
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, int64(90*60), found.End-found.Begin)
	assert.Equal(t, 1, found.AfterEvent)

	timers := decodeJSON[[]repository.Timer](t, mustRun(t, "--json", "timers", "list", "--search", "tatort"))
	require.Len(t, timers, 1)
	assert.Equal(t, fake.ARDRef, timers[0].ServiceRef)

	res := runCLI(t, "timers", "list", "--state", "bogus")
	assert.Equal(t, exitFailure, res.code)

	mustRun(t, "timers", "delete", timers[0].ID)
	for _, tm := range r.Timers() {
		assert.NotEqual(t, "Tatort", tm.Name)
	}
}

func TestTimersAddUsesPreferredAfterEvent(t *testing.T) {
	setup(t)
	r := addFakeDevice(t, "Living Room")

	mustRun(t, "prefs", "set", store.PrefDefaultAfterEvent, "deepstandby")
	mustRun(t, "timers", "add", "--ref", fake.ZDFRef, "--name", "Krimi",
		"--begin", "tomorrow 21:00", "--end", "22:00")

	for _, tm := range r.Timers() {
		if tm.Name == "Krimi" {
			assert.Equal(t, 2, tm.AfterEvent)
			return
		}
	}
	t.Fatal("timer not created")
}

func TestReceiverControl(t *testing.T) {
	setup(t)
	r := addFakeDevice(t, "Living Room")

	mustRun(t, "remote", "menu", "down", "ok")
	assert.Equal(t, []int{139, 108, 352}, r.Keys())

	mustRun(t, "zap", fake.ZDFRef)
	assert.Equal(t, fake.ZDFRef, r.CurrentService())

	assert.Contains(t, mustRun(t, "volume", "40"), "Volume 40")
	res := runCLI(t, "volume", "loud")
	assert.Equal(t, exitFailure, res.code)

	mustRun(t, "message", "hello", "--type", "warning")
	assert.Equal(t, []string{"hello"}, r.Messages())

	res = runCLI(t, "remote", "nosuchkey")
	assert.Equal(t, exitFailure, res.code)
}

func TestPreferences(t *testing.T) {
	setup(t)

	assert.Equal(t, "system\n", mustRun(t, "prefs", "get", store.PrefTheme))
	mustRun(t, "prefs", "set", store.PrefTheme, "dark")
	assert.Equal(t, "dark\n", mustRun(t, "prefs", "get", store.PrefTheme))

	res := runCLI(t, "prefs", "set", store.PrefTheme, "neon")
	assert.Equal(t, exitFailure, res.code)

	prefs := decodeJSON[map[string]string](t, mustRun(t, "--json", "prefs", "list"))
	assert.Equal(t, "dark", prefs[store.PrefTheme])

	mustRun(t, "prefs", "reset", store.PrefTheme)
	assert.Equal(t, "system\n", mustRun(t, "prefs", "get", store.PrefTheme))
}

func TestConfigInit(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "conf", "config.yaml")

	assert.Contains(t, mustRun(t, "config", "init", path), "Wrote "+path)
	_, err := os.Stat(path)
	require.NoError(t, err)

	res := runCLI(t, "config", "init", path)
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "already exists")

	mustRun(t, "config", "init", "--force", path)
	assert.Contains(t, mustRun(t, "--config", path, "config", "show"), "data_dir")
}

func TestDBCheck(t *testing.T) {
	setup(t)
	assert.Equal(t, "ok\n", mustRun(t, "db", "check"))
	assert.Equal(t, "[]\n", mustRun(t, "--json", "db", "check", "--full"))
}

func TestVersion(t *testing.T) {
	setup(t)
	info := decodeJSON[map[string]string](t, mustRun(t, "--json", "version"))
	assert.Equal(t, version, info["version"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitNoDevice, exitCode(fmt.Errorf("open: %w", repository.ErrNoDevice)))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
}
