// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package repository turns stored device profiles into OpenWebIF calls and
// shapes the decoded payloads for presentation.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/e2remote/internal/config"
	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var (
	// ErrNoDevice is returned when no receiver is selected.
	ErrNoDevice = errors.New("no receiver configured")
	// ErrInvalidArgument marks input rejected before any receiver call.
	ErrInvalidArgument = errors.New("invalid argument")
)

// DeviceSource resolves device profiles.
type DeviceSource interface {
	CurrentDevice(ctx context.Context) (store.Device, error)
	FindDevice(ctx context.Context, ref string) (store.Device, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using time.Now().
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type cachedClient struct {
	id      uuid.UUID
	updated time.Time
	client  *openwebif.Client
}

// Provider hands out an OpenWebIF client for the selected receiver. Clients
// are rebuilt only when the selected profile changes.
type Provider struct {
	devices   DeviceSource
	logger    zerolog.Logger
	transport http.RoundTripper

	mu       sync.Mutex
	cfg      config.ClientConfig
	override string
	cached   *cachedClient
}

// NewProvider creates a Provider reading profiles from devices.
func NewProvider(devices DeviceSource, cfg config.ClientConfig) *Provider {
	return &Provider{
		devices: devices,
		cfg:     cfg,
		logger:  xglog.WithComponent("repository"),
	}
}

// SetOverride pins a device by ID or name instead of the stored selection.
// An empty ref restores the stored selection.
func (p *Provider) SetOverride(ref string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.override = strings.TrimSpace(ref)
}

// SetClientConfig swaps transport settings; the next call builds a fresh client.
func (p *Provider) SetClientConfig(cfg config.ClientConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.cached = nil
}

// SetTransport replaces the HTTP transport used by new clients.
func (p *Provider) SetTransport(rt http.RoundTripper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transport = rt
	p.cached = nil
}

// Device returns the profile calls are made against.
func (p *Provider) Device(ctx context.Context) (store.Device, error) {
	p.mu.Lock()
	override := p.override
	p.mu.Unlock()

	if override != "" {
		d, err := p.devices.FindDevice(ctx, override)
		if errors.Is(err, store.ErrDeviceNotFound) {
			return store.Device{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
		}
		return d, err
	}
	d, err := p.devices.CurrentDevice(ctx)
	if errors.Is(err, store.ErrNoCurrentDevice) {
		return store.Device{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	return d, err
}

// Client returns a client for the selected receiver.
func (p *Provider) Client(ctx context.Context) (*openwebif.Client, store.Device, error) {
	d, err := p.Device(ctx)
	if err != nil {
		return nil, store.Device{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c := p.cached; c != nil && c.id == d.ID && c.updated.Equal(d.UpdatedAt) {
		return c.client, d, nil
	}

	client := openwebif.New(d.BaseURL(), p.clientOptions(d))
	p.cached = &cachedClient{id: d.ID, updated: d.UpdatedAt, client: client}
	p.logger.Debug().
		Str(xglog.FieldEvent, "repository.client_built").
		Str(xglog.FieldDeviceID, d.ID.String()).
		Str(xglog.FieldBaseURL, d.BaseURL()).
		Msg("built receiver client")
	return client, d, nil
}

func (p *Provider) clientOptions(d store.Device) openwebif.Options {
	streamPort := d.StreamPort
	if d.UseWebIFStreams {
		streamPort = 0
	}
	return openwebif.Options{
		Timeout:          p.cfg.Timeout,
		MaxRetries:       p.cfg.MaxRetries,
		Backoff:          p.cfg.Backoff,
		MaxBackoff:       p.cfg.MaxBackoff,
		Username:         d.Username,
		Password:         d.Password,
		UserAgent:        p.cfg.UserAgent,
		RateLimit:        rate.Limit(p.cfg.RateLimit),
		RateLimitBurst:   p.cfg.RateLimitBurst,
		BreakerThreshold: p.cfg.BreakerThreshold,
		BreakerReset:     p.cfg.BreakerReset,
		StreamPort:       streamPort,
		Transport:        p.transport,
		Name:             d.Name,
	}
}

// withClient resolves the client and tags ctx with the device ID for logging.
func (p *Provider) withClient(ctx context.Context) (context.Context, *openwebif.Client, error) {
	c, d, err := p.Client(ctx)
	if err != nil {
		return ctx, nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(telemetry.ReceiverAttributes(d.ID.String(), d.Name, "", "")...)
	return xglog.ContextWithDeviceID(ctx, d.ID.String()), c, nil
}
