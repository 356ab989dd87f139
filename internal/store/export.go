// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

const exportVersion = 1

type deviceExport struct {
	Version int      `json:"version"`
	Devices []Device `json:"devices"`
}

// ExportDevices writes every profile to path as JSON, atomically. Passwords
// are only written when includePasswords is set.
func (s *Store) ExportDevices(ctx context.Context, path string, includePasswords bool) (int, error) {
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return 0, err
	}
	if !includePasswords {
		for i := range devices {
			devices[i].Password = ""
		}
	}

	data, err := json.MarshalIndent(deviceExport{Version: exportVersion, Devices: devices}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode devices: %w", err)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(devices), nil
}

// ImportDevices reads an export file. Profiles whose ID or name already exists
// are updated in place; the rest are added. Imported profiles without a
// password keep the stored one.
func (s *Store) ImportDevices(ctx context.Context, path string) (int, error) {
	// #nosec G304 -- path is chosen by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	var in deviceExport
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, fmt.Errorf("decode import: %w", err)
	}
	if in.Version != exportVersion {
		return 0, fmt.Errorf("unsupported export version %d", in.Version)
	}

	imported := 0
	for _, d := range in.Devices {
		existing, err := s.matchDevice(ctx, d)
		switch {
		case errors.Is(err, ErrDeviceNotFound):
			if _, err := s.AddDevice(ctx, d); err != nil {
				return imported, fmt.Errorf("import %q: %w", d.Name, err)
			}
		case err != nil:
			return imported, err
		default:
			d.ID = existing.ID
			if d.Password == "" {
				d.Password = existing.Password
			}
			if _, err := s.UpdateDevice(ctx, d); err != nil {
				return imported, fmt.Errorf("import %q: %w", d.Name, err)
			}
		}
		imported++
	}
	return imported, nil
}

func (s *Store) matchDevice(ctx context.Context, d Device) (Device, error) {
	if d.ID != uuid.Nil {
		existing, err := s.GetDevice(ctx, d.ID)
		if !errors.Is(err, ErrDeviceNotFound) {
			return existing, err
		}
	}
	return s.FindDevice(ctx, d.Name)
}
