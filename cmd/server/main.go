// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package main is the entry point for the CineLens recommendation server.
//
// CineLens serves top-N movie recommendations over a MovieLens-format
// dataset. Users with rating history are scored by a trained matrix
// factorization model (see cmd/trainer); users without history fall back
// to a demographic nearest-neighbor path.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from environment variables and an
//     optional config file (Koanf v2)
//  2. Dataset Store: DuckDB-backed store over the rating, movie and user
//     files (loaded lazily on first use, warmed by a supervised service)
//  3. Predictor: trained factorization model artifact from cmd/trainer
//  4. Recommendation Engine: hybrid warm/cold scoring with a bounded
//     result cache
//  5. HTTP Server: REST API with health, metrics, user registration,
//     recommendation and rating history endpoints
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, a config file (config.yaml or
// CONFIG_PATH), and built-in defaults.
//
//	export DATASET_DIR=/data/ml-100k
//	export MODEL_PATH=/data/models/svd.gob.gz
//	./cinelens
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests to complete,
// and shuts down the supervisor tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinelens/cinelens/internal/api"
	"github.com/cinelens/cinelens/internal/config"
	"github.com/cinelens/cinelens/internal/dataset"
	"github.com/cinelens/cinelens/internal/logging"
	"github.com/cinelens/cinelens/internal/recommend"
	"github.com/cinelens/cinelens/internal/supervisor"
	"github.com/cinelens/cinelens/internal/supervisor/services"
	"github.com/cinelens/cinelens/internal/svd"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting CineLens with supervisor tree")
	logging.Info().
		Str("dataset_dir", cfg.Dataset.Dir).
		Str("model_path", cfg.Dataset.ModelPath).
		Int("neighbors", cfg.Engine.Neighbors).
		Msg("Configuration loaded")

	// Load the trained predictor. The artifact is produced by cmd/trainer;
	// the server refuses to start without it rather than silently serving
	// baseline-only scores for warm users.
	model, meta, err := svd.Load(cfg.Dataset.ModelPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Dataset.ModelPath).
			Msg("Failed to load model artifact (run cmd/trainer first)")
	}
	logging.Info().
		Int("factors", model.Factors).
		Int("users", meta.UserCount).
		Int("movies", meta.MovieCount).
		Time("trained_at", meta.TrainedAt).
		Msg("Model artifact loaded")

	// Dataset store defers loading to first use; the warmup service below
	// triggers it at startup so the first request does not pay the cost.
	store := dataset.NewStore(&cfg.Dataset, logging.Logger())

	engine, err := recommend.NewEngine(&recommend.Config{
		Neighbors:     cfg.Engine.Neighbors,
		CacheCapacity: cfg.Engine.CacheCapacity,
	}, store, model, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	// Registering a user changes the demographic population that cold-start
	// scoring depends on, so the store drops cached results on every add.
	store.SetInvalidationHook(engine.InvalidateCache)

	handler := api.NewHandler(store, engine, cfg.Engine.DefaultN, cfg.Engine.MaxN, version)
	middleware := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(slogLogger, treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewDatasetWarmupService(store, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
