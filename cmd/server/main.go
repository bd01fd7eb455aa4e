// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package main is the entry point for the Pishnahad server.
//
// Pishnahad serves personalized recommendations and similar-content
// lookups for the Tamasha VOD catalog. The server initializes
// components in the following order:
//
//  1. Configuration: layered load from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Catalog store: BadgerDB-backed snapshot and per-user storage
//  3. Reasoning client: rate-limited, circuit-broken LLM API client
//  4. Recommendation engine: orchestrates reasoning and the
//     deterministic fallback ranker
//  5. HTTP server: REST API under /api/v1, supervised by a suture tree
//
// # Configuration
//
// Configuration sources, highest priority first:
//   - Environment variables (PISHNAHAD_* — see internal/config)
//   - Config file (pishnahad.yaml, or PISHNAHAD_CONFIG)
//   - Built-in defaults
//
// The reasoning path needs PISHNAHAD_REASON_API_KEY. Without it the
// server still runs and every response comes from the deterministic
// fallback ranker.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, then waits for in-flight requests up to the
// configured shutdown timeout.
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

	"github.com/tamasha-vod/pishnahad/internal/api"
	"github.com/tamasha-vod/pishnahad/internal/config"
	"github.com/tamasha-vod/pishnahad/internal/logging"
	"github.com/tamasha-vod/pishnahad/internal/reason"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
	"github.com/tamasha-vod/pishnahad/internal/store"
	"github.com/tamasha-vod/pishnahad/internal/supervisor"
	"github.com/tamasha-vod/pishnahad/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Pishnahad with supervisor tree")
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Bool("reasoning_configured", cfg.Reason.Configured()).
		Msg("Configuration loaded")

	// Catalog store. The store holds the pushed catalog snapshot and
	// per-user history/favorites; everything else is derived per request.
	st, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog store")
		}
	}()
	logging.Info().Msg("Catalog store opened")

	// Reasoning client. Constructed even without credentials: each call
	// then fails fast and the engine falls back to deterministic ranking.
	reasoner, err := reason.NewClient(cfg.Reason, nil, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create reasoning client")
	}
	if !cfg.Reason.Configured() {
		logging.Warn().Msg("Reasoning API key not configured - all responses will use the fallback ranker")
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, reasoner, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	handlers := api.NewHandlers(st, engine)
	router := api.NewRouter(handlers, api.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow,
		IngestToken: cfg.Server.IngestToken,
	})
	if cfg.Server.IngestToken == "" {
		logging.Warn().Msg("Snapshot ingestion endpoints are unauthenticated (INGEST_TOKEN not set)")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree. sutureslog wants slog, so bridge zerolog through
	// the adapter.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Pishnahad stopped gracefully")
}
