// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"

	"github.com/ManuGH/e2remote/internal/api"
	"github.com/ManuGH/e2remote/internal/api/middleware"
	"github.com/ManuGH/e2remote/internal/config"
	"github.com/ManuGH/e2remote/internal/daemon"
	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/telemetry"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Long:  "Serve the JSON API over HTTP until interrupted. The configuration file is watched and reloaded on change.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				a.cfg.Server.Listen = listen
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := xglog.WithComponent("serve")
	cfg := a.cfg

	st, provider, err := a.open(ctx)
	if err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "e2remote",
		ServiceVersion: version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return err
	}

	tracing := ""
	if cfg.Telemetry.Enabled {
		tracing = "e2remote"
	}

	srv := api.New(api.Deps{Store: st, Provider: provider, Clock: a.clock, Version: version})
	handler := srv.Handler(middleware.StackConfig{
		EnableMetrics:      true,
		TracingService:     tracing,
		EnableLogging:      true,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{Logger: logger, APIHandler: handler})
	if err != nil {
		return err
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	if a.loader.Path() != "" {
		holder := config.NewHolder(cfg, a.loader)
		updates := make(chan config.Config, 1)
		holder.RegisterListener(updates)
		if err := holder.StartWatcher(ctx); err != nil {
			logger.Warn().Err(err).Str("event", "config.watch_failed").Msg("config changes will need a restart")
		} else {
			mgr.RegisterShutdownHook("config-watcher", func(context.Context) error {
				holder.Stop()
				return nil
			})
			go a.applyReloads(ctx, updates)
		}
	}

	return mgr.Start(ctx)
}

// applyReloads applies the settings that can change without a restart.
// Listener and rate limit changes take effect on the next start.
func (a *app) applyReloads(ctx context.Context, updates <-chan config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case next := <-updates:
			if a.logLevel != "" {
				next.Log.Level = a.logLevel
			}
			a.configureLogging(next)
			a.provider.SetClientConfig(next.Client)
			a.store.SetHistoryLimit(next.Search.HistoryLimit)
			logger := xglog.WithComponent("serve")
			logger.Info().
				Str("event", "config.applied").
				Msg("configuration reloaded")
		}
	}
}
