// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/e2remote/internal/config"
	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	configPath string
	logLevel   string
	device     string
	jsonOut    bool

	out    io.Writer
	errOut io.Writer
	clock  repository.Clock

	loader   *config.Loader
	cfg      config.Config
	store    *store.Store
	provider *repository.Provider
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{out: stdout, errOut: stderr, clock: repository.RealClock{}}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "e2remote",
		Short:         "Remote control for Enigma2 receivers",
		Long:          "e2remote browses channels, EPG, timers and recordings of Enigma2 set-top boxes and drives them through OpenWebIF.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to config file (YAML); defaults to $E2REMOTE_CONFIG or <data dir>/config.yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.device, "device", "", "receiver to use (name or id) instead of the selected one")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newDeviceCmd(a),
		newBouquetCmd(a, "tv"),
		newBouquetCmd(a, "radio"),
		newEPGCmd(a),
		newTimersCmd(a),
		newMoviesCmd(a),
		newInfoCmd(a),
		newSignalCmd(a),
		newStatusCmd(a),
		newZapCmd(a),
		newRemoteCmd(a),
		newPowerCmd(a),
		newVolumeCmd(a),
		newMessageCmd(a),
		newScreenshotCmd(a),
		newStreamCmd(a),
		newHistoryCmd(a),
		newPrefsCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newDBCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init loads .env, the configuration and the logger. The database is opened
// lazily by the commands that need it.
func (a *app) init(_ context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	xglog.Configure(xglog.Config{Level: "warn", Format: "console", Output: a.errOut, Service: "e2remote", Version: version})

	a.loader = config.NewLoader(a.resolveConfigPath(), version)
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.configureLogging(cfg)

	if a.device == "" {
		a.device = strings.TrimSpace(os.Getenv(config.EnvDevice))
	}
	return nil
}

func (a *app) configureLogging(cfg config.Config) {
	xglog.Configure(xglog.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     a.errOut,
		Service:    "e2remote",
		Version:    version,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

// resolveConfigPath picks --config, then $E2REMOTE_CONFIG, then the data dir's
// config.yaml when it exists.
func (a *app) resolveConfigPath() string {
	if p := strings.TrimSpace(a.configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(config.EnvConfigFile)); p != "" {
		return p
	}
	auto := filepath.Join(config.ParseString(config.EnvDataDir, config.Defaults().DataDir), "config.yaml")
	if _, err := os.Stat(auto); err == nil {
		return auto
	}
	return ""
}

func (a *app) defaultConfigPath() string {
	if a.loader != nil && a.loader.Path() != "" {
		return a.loader.Path()
	}
	return filepath.Join(a.cfg.DataDir, "config.yaml")
}

// open returns the store and receiver provider, opening them on first use.
func (a *app) open(ctx context.Context) (*store.Store, *repository.Provider, error) {
	if a.store != nil {
		return a.store, a.provider, nil
	}
	st, err := store.Open(ctx, a.cfg.DatabasePath(), store.Options{HistoryLimit: a.cfg.Search.HistoryLimit})
	if err != nil {
		return nil, nil, err
	}
	a.store = st
	a.provider = repository.NewProvider(st, a.cfg.Client)
	a.provider.SetOverride(a.device)
	return a.store, a.provider, nil
}

func (a *app) settings(ctx context.Context) repository.Settings {
	st, _, err := a.open(ctx)
	if err != nil {
		return repository.Settings{Clock24h: true}
	}
	s, err := repository.LoadSettings(ctx, st)
	if err != nil {
		return repository.Settings{Clock24h: true}
	}
	return s
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	_ = xglog.Close()
}
