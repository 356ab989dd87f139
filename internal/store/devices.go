// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultStreamPort is the Enigma2 direct streaming port.
const DefaultStreamPort = 8001

// Device is a receiver connection profile.
type Device struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Host            string    `json:"host"`
	Port            int       `json:"port"`
	HTTPS           bool      `json:"https"`
	Username        string    `json:"username,omitempty"`
	Password        string    `json:"password,omitempty"`
	StreamPort      int       `json:"stream_port"`
	UseWebIFStreams bool      `json:"use_webif_streams"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BaseURL returns the OpenWebIF root URL without credentials.
func (d Device) BaseURL() string {
	scheme := "http"
	if d.HTTPS {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(d.Host, strconv.Itoa(d.Port))}
	return u.String()
}

// Normalize trims fields and fills defaults, then validates the profile.
func (d *Device) Normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Host = strings.TrimSpace(d.Host)
	d.Username = strings.TrimSpace(d.Username)

	// Accept "http://host:port" pasted as host.
	if strings.Contains(d.Host, "://") {
		if u, err := url.Parse(d.Host); err == nil && u.Host != "" {
			d.HTTPS = u.Scheme == "https"
			d.Host = u.Hostname()
			if p, err := strconv.Atoi(u.Port()); err == nil && d.Port == 0 {
				d.Port = p
			}
		}
	}
	if d.Name == "" {
		d.Name = d.Host
	}
	if d.Port == 0 {
		d.Port = 80
		if d.HTTPS {
			d.Port = 443
		}
	}
	if d.StreamPort == 0 {
		d.StreamPort = DefaultStreamPort
	}

	switch {
	case d.Host == "":
		return fmt.Errorf("%w: host is required", ErrInvalidDevice)
	case strings.ContainsAny(d.Host, " /?#@"):
		return fmt.Errorf("%w: host %q is not a hostname or IP", ErrInvalidDevice, d.Host)
	case d.Port < 1 || d.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidDevice, d.Port)
	case d.StreamPort < 1 || d.StreamPort > 65535:
		return fmt.Errorf("%w: stream port %d out of range", ErrInvalidDevice, d.StreamPort)
	}
	return nil
}

const deviceColumns = `id, name, host, port, https, username, password, stream_port, use_webif_streams, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (Device, error) {
	var (
		d                Device
		id               string
		https, webif     int
		created, updated int64
	)
	if err := row.Scan(&id, &d.Name, &d.Host, &d.Port, &https, &d.Username, &d.Password, &d.StreamPort, &webif, &created, &updated); err != nil {
		return Device{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Device{}, fmt.Errorf("corrupt device id %q: %w", id, err)
	}
	d.ID = parsed
	d.HTTPS = https != 0
	d.UseWebIFStreams = webif != 0
	d.CreatedAt = time.Unix(0, created).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return d, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nameTaken(ctx context.Context, tx *sql.Tx, name string, except uuid.UUID) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM devices WHERE name_key = ?", nameKey(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return id != except.String(), nil
}

// AddDevice stores a new profile, assigning an ID when d.ID is zero. The first
// device added becomes the current device.
func (s *Store) AddDevice(ctx context.Context, d Device) (Device, error) {
	if err := d.Normalize(); err != nil {
		return Device{}, err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := s.now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	err := s.transaction(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, d.Name, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check device name: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrDuplicateDevice, d.Name)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO devices (`+deviceColumns+`, name_key)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID.String(), d.Name, d.Host, d.Port, boolInt(d.HTTPS), d.Username, d.Password,
			d.StreamPort, boolInt(d.UseWebIFStreams), now.UnixNano(), now.UnixNano(), nameKey(d.Name)); err != nil {
			return fmt.Errorf("insert device: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO current_device (slot, device_id) VALUES (1, ?)`, d.ID.String()); err != nil {
			return fmt.Errorf("select first device: %w", err)
		}
		return nil
	})
	if err != nil {
		return Device{}, err
	}

	s.logger.Info().
		Str("event", "store.device_added").
		Str("device_id", d.ID.String()).
		Str("name", d.Name).
		Msg("device added")
	return d, nil
}

// UpdateDevice replaces a stored profile. CreatedAt is preserved.
func (s *Store) UpdateDevice(ctx context.Context, d Device) (Device, error) {
	if err := d.Normalize(); err != nil {
		return Device{}, err
	}
	now := s.now().UTC()

	err := s.transaction(ctx, func(tx *sql.Tx) error {
		existing, err := scanDevice(tx.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = ?", d.ID.String()))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDeviceNotFound
		}
		if err != nil {
			return fmt.Errorf("load device: %w", err)
		}
		taken, err := nameTaken(ctx, tx, d.Name, d.ID)
		if err != nil {
			return fmt.Errorf("check device name: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrDuplicateDevice, d.Name)
		}
		d.CreatedAt = existing.CreatedAt
		d.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `UPDATE devices SET name = ?, name_key = ?, host = ?, port = ?, https = ?,
			username = ?, password = ?, stream_port = ?, use_webif_streams = ?, updated_at = ? WHERE id = ?`,
			d.Name, nameKey(d.Name), d.Host, d.Port, boolInt(d.HTTPS), d.Username, d.Password,
			d.StreamPort, boolInt(d.UseWebIFStreams), now.UnixNano(), d.ID.String())
		if err != nil {
			return fmt.Errorf("update device: %w", err)
		}
		return nil
	})
	if err != nil {
		return Device{}, err
	}
	return d, nil
}

// GetDevice returns a device by ID.
func (s *Store) GetDevice(ctx context.Context, id uuid.UUID) (Device, error) {
	d, err := scanDevice(s.db.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = ?", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, ErrDeviceNotFound
	}
	if err != nil {
		return Device{}, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

// FindDevice resolves a device by ID or case-insensitive name.
func (s *Store) FindDevice(ctx context.Context, ref string) (Device, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return s.GetDevice(ctx, id)
	}
	d, err := scanDevice(s.db.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE name_key = ?", nameKey(ref)))
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, ref)
	}
	if err != nil {
		return Device{}, fmt.Errorf("find device: %w", err)
	}
	return d, nil
}

// ListDevices returns all devices ordered by name.
func (s *Store) ListDevices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+deviceColumns+" FROM devices ORDER BY name_key")
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	devices := make([]Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// DeleteDevice removes a device. Deleting the current device clears the
// selection.
func (s *Store) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDeviceNotFound
	}
	s.logger.Info().Str("event", "store.device_deleted").Str("device_id", id.String()).Msg("device deleted")
	return nil
}

// SetCurrentDevice selects the device the app talks to.
func (s *Store) SetCurrentDevice(ctx context.Context, id uuid.UUID) error {
	return s.transaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM devices WHERE id = ?", id.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDeviceNotFound
		}
		if err != nil {
			return fmt.Errorf("check device: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO current_device (slot, device_id) VALUES (1, ?)
			ON CONFLICT(slot) DO UPDATE SET device_id = excluded.device_id`, id.String())
		if err != nil {
			return fmt.Errorf("set current device: %w", err)
		}
		return nil
	})
}

// CurrentDevice returns the selected device or ErrNoCurrentDevice.
func (s *Store) CurrentDevice(ctx context.Context) (Device, error) {
	d, err := scanDevice(s.db.QueryRowContext(ctx, `SELECT `+prefixed("d.", deviceColumns)+`
		FROM current_device c JOIN devices d ON d.id = c.device_id WHERE c.slot = 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, ErrNoCurrentDevice
	}
	if err != nil {
		return Device{}, fmt.Errorf("current device: %w", err)
	}
	return d, nil
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
