// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/google/renameio/v2"
)

// Device controls the selected receiver.
type Device struct {
	provider *Provider
}

// NewDevice creates a device control repository.
func NewDevice(p *Provider) *Device {
	return &Device{provider: p}
}

// Info returns hardware and software details.
func (r *Device) Info(ctx context.Context) (*openwebif.DeviceInfo, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.About(ctx)
}

// Status returns the current service, volume and standby state.
func (r *Device) Status(ctx context.Context) (*openwebif.StatusInfo, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.StatusInfo(ctx)
}

// Signal returns tuner signal statistics.
func (r *Device) Signal(ctx context.Context) (*openwebif.Signal, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Signal(ctx)
}

// Zap switches to a service.
func (r *Device) Zap(ctx context.Context, serviceRef string) error {
	if strings.TrimSpace(serviceRef) == "" {
		return fmt.Errorf("%w: service reference is required", ErrInvalidArgument)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	return c.Zap(ctx, serviceRef)
}

// Remote presses the named keys in order. A key name may also be a numeric
// key code. All keys are resolved before the first press.
func (r *Device) Remote(ctx context.Context, longPress bool, keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no key given", ErrInvalidArgument)
	}
	codes := make([]int, 0, len(keys))
	for _, k := range keys {
		code, err := KeyCode(k)
		if err != nil {
			return err
		}
		codes = append(codes, code)
	}

	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	for i, code := range codes {
		if err := c.RemoteControl(ctx, code, longPress); err != nil {
			return fmt.Errorf("key %q: %w", keys[i], err)
		}
	}
	return nil
}

// Power changes or queries the power state and reports whether the receiver
// is in standby afterwards.
func (r *Device) Power(ctx context.Context, state string) (bool, error) {
	ps, ok := openwebif.ParsePowerState(state)
	if !ok {
		return false, fmt.Errorf("%w: unknown power state %q", ErrInvalidArgument, state)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return false, err
	}
	return c.PowerState(ctx, ps)
}

// Volume applies "up", "down", "mute", "state" or a level 0..100.
func (r *Device) Volume(ctx context.Context, action string) (*openwebif.VolumeState, error) {
	if !validVolumeAction(action) {
		return nil, fmt.Errorf("%w: unknown volume action %q", ErrInvalidArgument, action)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Volume(ctx, action)
}

func validVolumeAction(action string) bool {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "up", "down", "mute", "state":
		return true
	}
	level, err := strconv.Atoi(strings.TrimSpace(action))
	return err == nil && level >= 0 && level <= 100
}

// Message shows text on the TV for timeout seconds.
func (r *Device) Message(ctx context.Context, text string, kind openwebif.MessageType, timeout int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message text is required", ErrInvalidArgument)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	return c.Message(ctx, text, kind, timeout)
}

// Screenshot grabs the screen and writes the JPEG to path atomically. It
// returns the number of bytes written.
func (r *Device) Screenshot(ctx context.Context, mode openwebif.ScreenshotMode, width int, path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("%w: output path is required", ErrInvalidArgument)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return 0, err
	}
	data, err := c.Screenshot(ctx, mode, width)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write screenshot: %w", err)
	}

	logger := xglog.WithComponentFromContext(ctx, "repository")
	logger.Info().
		Str(xglog.FieldEvent, "repository.screenshot_saved").
		Str(xglog.FieldPath, path).
		Int("bytes", len(data)).
		Msg("screenshot saved")
	return len(data), nil
}

// StreamURL returns the live stream URL of a service.
func (r *Device) StreamURL(ctx context.Context, serviceRef string) (string, error) {
	if strings.TrimSpace(serviceRef) == "" {
		return "", fmt.Errorf("%w: service reference is required", ErrInvalidArgument)
	}
	c, _, err := r.provider.Client(ctx)
	if err != nil {
		return "", err
	}
	return c.StreamURL(serviceRef), nil
}
