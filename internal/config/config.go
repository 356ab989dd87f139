// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads e2remote settings from defaults, an optional YAML file
// and E2REMOTE_* environment variables, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Database  string          `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Client    ClientConfig    `yaml:"client"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Search    SearchConfig    `yaml:"search"`

	// Version is stamped from the binary, never read from file or env.
	Version string `yaml:"-"`
}

// LogConfig controls the zerolog setup.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ClientConfig tunes the OpenWebIF HTTP client.
type ClientConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"` // extra attempts for reads; 0 disables
	Backoff          time.Duration `yaml:"backoff"`
	MaxBackoff       time.Duration `yaml:"max_backoff"`
	RateLimit        float64       `yaml:"rate_limit"`
	RateLimitBurst   int           `yaml:"rate_limit_burst"`
	UserAgent        string        `yaml:"user_agent"`
	BreakerThreshold int           `yaml:"breaker_threshold"` // <= 0 disables the breaker
	BreakerReset     time.Duration `yaml:"breaker_reset"`
}

// ServerConfig configures `e2remote serve`.
type ServerConfig struct {
	Listen             string        `yaml:"listen"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	MaxConnections     int           `yaml:"max_connections"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// SearchConfig bounds the stored search histories.
type SearchConfig struct {
	HistoryLimit int `yaml:"history_limit"`
}

// DatabasePath returns the SQLite path, defaulting to e2remote.db in DataDir.
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.DataDir, "e2remote.db")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir: defaultDataDir(),
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Client: ClientConfig{
			Timeout:          10 * time.Second,
			MaxRetries:       2,
			Backoff:          200 * time.Millisecond,
			MaxBackoff:       2 * time.Second,
			RateLimit:        10,
			RateLimitBurst:   20,
			UserAgent:        "e2remote",
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Server: ServerConfig{
			Listen:             "127.0.0.1:8089",
			RateLimitPerMinute: 300,
			MaxConnections:     64,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       60 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		Search: SearchConfig{HistoryLimit: 10},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "e2remote")
	}
	return ".e2remote"
}
