// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
	environ         func() []string
}

// NewLoader creates a new configuration loader. An empty configPath means
// defaults plus environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
		environ:         os.Environ,
	}
}

// Path returns the config file path the loader reads.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	l.warnUnknownEnv()

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing. Unknown fields
// and multiple documents are rejected.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.Database = l.envString(EnvDatabase, cfg.Database)

	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = l.envString(EnvLogFormat, cfg.Log.Format)
	cfg.Log.File = l.envString(EnvLogFile, cfg.Log.File)

	cfg.Client.Timeout = l.envDuration(EnvClientTimeout, cfg.Client.Timeout)
	cfg.Client.MaxRetries = l.envInt(EnvClientRetries, cfg.Client.MaxRetries)
	cfg.Client.Backoff = l.envDuration(EnvClientBackoff, cfg.Client.Backoff)
	cfg.Client.MaxBackoff = l.envDuration(EnvClientMaxBackoff, cfg.Client.MaxBackoff)
	cfg.Client.RateLimit = l.envFloat(EnvClientRateLimit, cfg.Client.RateLimit)
	cfg.Client.RateLimitBurst = l.envInt(EnvClientRateBurst, cfg.Client.RateLimitBurst)
	cfg.Client.UserAgent = l.envString(EnvClientUserAgent, cfg.Client.UserAgent)
	cfg.Client.BreakerThreshold = l.envInt(EnvBreakerThreshold, cfg.Client.BreakerThreshold)
	cfg.Client.BreakerReset = l.envDuration(EnvBreakerReset, cfg.Client.BreakerReset)

	cfg.Server.Listen = l.envString(EnvListen, cfg.Server.Listen)
	cfg.Server.RateLimitPerMinute = l.envInt(EnvServerRateLimit, cfg.Server.RateLimitPerMinute)
	cfg.Server.MaxConnections = l.envInt(EnvServerMaxConns, cfg.Server.MaxConnections)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)

	cfg.Search.HistoryLimit = l.envInt(EnvSearchHistoryLimit, cfg.Search.HistoryLimit)
}

// UnknownEnvKeys lists E2REMOTE_* variables that the loader never read,
// which usually means a typo.
func (l *Loader) UnknownEnvKeys() []string {
	known := map[string]struct{}{EnvConfigFile: {}, EnvDevice: {}}
	var unknown []string
	for _, pair := range l.environ() {
		key := strings.SplitN(pair, "=", 2)[0]
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; ok {
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	return unknown
}

func (l *Loader) warnUnknownEnv() {
	unknown := l.UnknownEnvKeys()
	if len(unknown) == 0 {
		return
	}
	logger := log.WithComponent("config")
	logger.Warn().
		Str("event", "config.unknown_env").
		Strs("keys", unknown).
		Msg("ignoring unknown environment variables")
}
