// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package main is the entry point for the Aria server.
//
// Aria is the browser-facing half of a personal music library: it keeps a
// live copy of the library metadata pushed by the storage daemon, scores
// and orders tracks for playback, and serves the selection, tracklist and
// settings APIs the web UI consumes.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file and environment (Koanf v2)
//  2. Settings store: BadgerDB-backed local key/value settings
//  3. WebSocket hub: real-time selection and playback updates to UI clients
//  4. Player: metadata index, scoring pipeline and tracklist state
//  5. Daemon client: WebSocket subscription to the metadata daemon
//  6. HTTP server: REST API plus /ws, /healthz and /metrics
//
// All long-running components run under a Suture supervisor tree; a crash
// in the daemon connection loop restarts that layer without taking down
// the HTTP server.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables (ARIA_*), config file
// (config.yaml), built-in defaults. The daemon endpoint is the only
// setting without a usable default:
//
//	export ARIA_DAEMON_URL=ws://localhost:3200/api/metadata/ws
//	./aria
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervisor
// tree stops, the HTTP server drains in-flight requests (10s timeout),
// and the settings store is closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucvr/aria/internal/api"
	"github.com/lucvr/aria/internal/config"
	"github.com/lucvr/aria/internal/library"
	"github.com/lucvr/aria/internal/logging"
	"github.com/lucvr/aria/internal/player"
	"github.com/lucvr/aria/internal/recommend"
	"github.com/lucvr/aria/internal/settings"
	"github.com/lucvr/aria/internal/supervisor"
	"github.com/lucvr/aria/internal/supervisor/services"
	"github.com/lucvr/aria/internal/sync"
	ws "github.com/lucvr/aria/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logger := logging.Logger()

	logging.Info().
		Str("daemon_url", cfg.Daemon.URL).
		Str("settings_path", cfg.Settings.Path).
		Str("addr", cfg.Server.Addr()).
		Msg("Configuration loaded")

	store, err := settings.Open(cfg.Settings.Path, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open settings store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing settings store")
		}
	}()
	logging.Info().Msg("Settings store opened")

	// The hub doubles as the player's notifier and playback dispatcher:
	// selection updates, tracklist transitions and play effects all reach
	// the browser over the same connection.
	hub := ws.NewHub(logger)

	pipeline := recommend.New(recommend.Config{
		Seed:         cfg.Selection.Seed,
		MinRelevance: cfg.Selection.MinRelevance,
	}, logger)

	pl := player.New(pipeline, player.Options{
		MaxHistory: cfg.Tracklist.MaxHistory,
		Dispatcher: hub,
		Notifier:   hub,
	}, logger)

	// Daemon pushes feed the player; server-side settings merge into the
	// local store without overwriting local values.
	handler := sync.HandlerFunc(func(raw library.RawMetadata) {
		pl.ApplySnapshot(raw)
		if len(raw.Settings) > 0 {
			if err := store.Merge(raw.Settings); err != nil {
				logging.Warn().Err(err).Msg("Failed to merge daemon settings")
			}
		}
	})
	daemonClient := sync.NewClient(sync.Config{
		URL:             cfg.Daemon.URL,
		RefreshInterval: cfg.Daemon.RefreshInterval,
	}, handler, logger)

	mw := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitDisabled,
	})
	router := api.NewRouter(pl, store, ws.Handler(hub), mw, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(services.NewHubService(hub))
	tree.AddSyncService(services.NewDaemonSyncService(daemonClient))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
