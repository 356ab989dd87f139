// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)
	_, err := src.AddDevice(ctx, Device{Name: "Box", Host: "10.0.0.2", Username: "root", Password: "secret"})
	require.NoError(t, err)
	_, err = src.AddDevice(ctx, Device{Name: "Attic", Host: "10.0.0.5", HTTPS: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "devices.json")
	n, err := src.ExportDevices(ctx, path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	dst := openTestStore(t)
	n, err = dst.ImportDevices(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := dst.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Attic", list[0].Name)
	assert.Equal(t, 443, list[0].Port)

	// Re-import updates in place and keeps stored passwords.
	box, err := dst.FindDevice(ctx, "box")
	require.NoError(t, err)
	box.Password = "local"
	_, err = dst.UpdateDevice(ctx, box)
	require.NoError(t, err)

	n, err = dst.ImportDevices(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	box, err = dst.FindDevice(ctx, "box")
	require.NoError(t, err)
	assert.Equal(t, "local", box.Password)

	list, err = dst.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestExportWithPasswords(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)
	_, err := src.AddDevice(ctx, Device{Name: "Box", Host: "10.0.0.2", Password: "secret"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "devices.json")
	_, err = src.ExportDevices(ctx, path, true)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "secret")
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"devices":[]}`), 0o600))
	_, err := openTestStore(t).ImportDevices(context.Background(), path)
	assert.ErrorContains(t, err, "unsupported export version")
}
