// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Command server runs the insights engine: the goal scheduler and anomaly
// scanner under a suture supervisor tree, with an optional Prometheus
// exposition endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxlink/insights/internal/anomaly"
	"github.com/voxlink/insights/internal/config"
	"github.com/voxlink/insights/internal/goals"
	"github.com/voxlink/insights/internal/logging"
	"github.com/voxlink/insights/internal/repository"
	"github.com/voxlink/insights/internal/supervisor"
	"github.com/voxlink/insights/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("backend", cfg.Database.Backend).
		Bool("anomaly_scan", cfg.Anomaly.Enabled).
		Msg("starting insights engine")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	calc := goals.NewCalculators(store, nil)
	scheduler := goals.NewScheduler(store, calc, cfg.Goals.RecomputeQuiet, nil)
	registry := goals.NewRegistry(store, scheduler, cfg.Goals.SeedDefaults, nil)
	scanner := anomaly.NewScanner(store, anomaly.Config{
		DailyLookbackDays:   cfg.Anomaly.DailyLookbackDays,
		HourlyLookbackHours: cfg.Anomaly.HourlyLookbackHours,
	}, nil)

	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewStoreService(store, cfg.Database.Backend+"-store"))
	tree.AddEngineService(services.NewGoalsService(func(ctx context.Context) error {
		_, err := registry.List(ctx)
		return err
	}, scheduler))
	if cfg.Anomaly.Enabled {
		tree.AddEngineService(services.NewScannerService(scanner, cfg.Anomaly.ScanInterval))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = serveMetrics(cfg.Metrics.Addr)
	}

	err = tree.Serve(ctx)
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Warn().Err(shutdownErr).Msg("metrics server shutdown failed")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("insights engine stopped")
	return nil
}

func openStore(cfg *config.Config) (repository.MetricsRepository, error) {
	switch cfg.Database.Backend {
	case "memory":
		return repository.NewMemoryStore(), nil
	case "duckdb":
		store, err := repository.NewDuckDBStore(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}
