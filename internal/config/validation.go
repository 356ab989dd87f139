// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks cfg and returns every problem found, joined.
func Validate(cfg Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		add("data_dir: must not be empty")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		add("log.level: invalid level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		add("log.format: must be json or console, got %q", cfg.Log.Format)
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		add("log: rotation limits must not be negative")
	}

	c := cfg.Client
	if c.Timeout <= 0 {
		add("client.timeout: must be positive")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		add("client.max_retries: must be between 0 and 10, got %d", c.MaxRetries)
	}
	if c.Backoff <= 0 || c.MaxBackoff < c.Backoff {
		add("client.backoff: must be positive and not exceed max_backoff")
	}
	if c.RateLimit <= 0 {
		add("client.rate_limit: must be positive")
	}
	if c.RateLimitBurst < 1 {
		add("client.rate_limit_burst: must be at least 1")
	}
	if c.BreakerThreshold > 0 && c.BreakerReset <= 0 {
		add("client.breaker_reset: must be positive when the breaker is enabled")
	}

	if _, _, err := net.SplitHostPort(cfg.Server.Listen); err != nil {
		add("server.listen: %v", err)
	}
	if cfg.Server.RateLimitPerMinute < 0 {
		add("server.rate_limit_per_minute: must not be negative")
	}
	if cfg.Server.MaxConnections < 0 {
		add("server.max_connections: must not be negative")
	}

	if t := cfg.Telemetry; t.Enabled {
		if t.Exporter != "grpc" && t.Exporter != "http" {
			add("telemetry.exporter: must be grpc or http, got %q", t.Exporter)
		}
		if strings.TrimSpace(t.Endpoint) == "" {
			add("telemetry.endpoint: required when telemetry is enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		add("telemetry.sampling_rate: must be between 0 and 1")
	}

	if cfg.Search.HistoryLimit < 1 || cfg.Search.HistoryLimit > 100 {
		add("search.history_limit: must be between 1 and 100, got %d", cfg.Search.HistoryLimit)
	}

	return errors.Join(errs...)
}
