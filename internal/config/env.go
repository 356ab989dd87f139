// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/log"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of every environment variable the loader reads.
const EnvPrefix = "E2REMOTE_"

// Environment variable names.
const (
	EnvDataDir            = "E2REMOTE_DATA"
	EnvDatabase           = "E2REMOTE_DB"
	EnvLogLevel           = "E2REMOTE_LOG_LEVEL"
	EnvLogFormat          = "E2REMOTE_LOG_FORMAT"
	EnvLogFile            = "E2REMOTE_LOG_FILE"
	EnvClientTimeout      = "E2REMOTE_CLIENT_TIMEOUT"
	EnvClientRetries      = "E2REMOTE_CLIENT_RETRIES"
	EnvClientBackoff      = "E2REMOTE_CLIENT_BACKOFF"
	EnvClientMaxBackoff   = "E2REMOTE_CLIENT_MAX_BACKOFF"
	EnvClientRateLimit    = "E2REMOTE_CLIENT_RATE_LIMIT"
	EnvClientRateBurst    = "E2REMOTE_CLIENT_RATE_BURST"
	EnvClientUserAgent    = "E2REMOTE_CLIENT_USER_AGENT"
	EnvBreakerThreshold   = "E2REMOTE_BREAKER_THRESHOLD"
	EnvBreakerReset       = "E2REMOTE_BREAKER_RESET"
	EnvListen             = "E2REMOTE_LISTEN"
	EnvServerRateLimit    = "E2REMOTE_SERVER_RATE_LIMIT"
	EnvServerMaxConns     = "E2REMOTE_SERVER_MAX_CONNS"
	EnvTelemetryEnabled   = "E2REMOTE_TELEMETRY_ENABLED"
	EnvTelemetryExporter  = "E2REMOTE_OTEL_EXPORTER"
	EnvTelemetryEndpoint  = "E2REMOTE_OTEL_ENDPOINT"
	EnvTelemetrySampling  = "E2REMOTE_OTEL_SAMPLING"
	EnvSearchHistoryLimit = "E2REMOTE_SEARCH_HISTORY_LIMIT"
	// EnvConfigFile and EnvDevice are read by the CLI, not the loader.
	EnvConfigFile = "E2REMOTE_CONFIG"
	EnvDevice     = "E2REMOTE_DEVICE"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logger.Debug().
			Str("key", key).
			Str("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Float64("value", f).Str("source", "environment").Msg("using environment variable")
	return f
}

// ParseDuration reads a duration in Go format (e.g. "5s") from environment
// variable. It falls back to default on parse errors or empty variables.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable. Accepts true/false,
// 1/0, yes/no and on/off in any case.
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	logger.Warn().
		Str("key", key).
		Str("value", v).
		Bool("default", defaultValue).
		Msg("invalid boolean in environment variable, using default")
	return defaultValue
}
