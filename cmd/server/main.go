// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package main is the entry point for the Soundwave server.
//
// Soundwave is a self-hosted media discovery and playlist platform. Users
// search movies (TMDb) and music (Spotify), collect results into shareable
// playlists, and get recommendations derived from their own activity.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, config.yaml, env)
//  2. Document store: BadgerDB for users, playlists, items, token records
//  3. Activity store: DuckDB for the append-only activity event log
//  4. Pub/Sub: Watermill over NATS JetStream, or in-process GoChannel
//  5. Discovery: TMDb and Spotify clients behind a shared TTL cache
//  6. Recommendation engine: co-visitation model retrained on a timer
//  7. Supervisor tree: background workers and the HTTP server under Suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (JWT_SECRET, TMDB_API_KEY, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Discovery providers are optional. Without TMDB_API_KEY the movie endpoints
// return 503; without SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET the music
// endpoints do. Everything else works either way.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops background workers via the supervisor tree
//   - Closes pub/sub transport and both databases
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

	"github.com/soundwavehq/soundwave/internal/activity"
	"github.com/soundwavehq/soundwave/internal/api"
	"github.com/soundwavehq/soundwave/internal/auth"
	"github.com/soundwavehq/soundwave/internal/cache"
	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/discovery"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/recommend"
	"github.com/soundwavehq/soundwave/internal/store"
	"github.com/soundwavehq/soundwave/internal/supervisor"
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

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("movies_enabled", cfg.TMDbEnabled()).
		Bool("music_enabled", cfg.SpotifyEnabled()).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Soundwave")

	// Document store: users, playlists, items, token records.
	st, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()
	logging.Info().Str("path", cfg.Store.Path).Msg("Document store opened")

	// Activity store: append-only event log for feeds and training data.
	activityStore, err := activity.OpenStore(cfg.Activity)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open activity store")
	}
	defer func() {
		if err := activityStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing activity store")
		}
	}()
	logging.Info().Str("path", cfg.Activity.DatabasePath).Msg("Activity store opened")

	// Pub/sub transport for activity events.
	pubsub, err := activity.NewPubSub(cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize pub/sub")
	}
	defer func() {
		if err := pubsub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pub/sub")
		}
	}()

	recorder := activity.NewRecorder(pubsub.Publisher, cfg.Activity.Topic)
	consumer := activity.NewConsumer(pubsub.Subscriber, activityStore, cfg.Activity.Topic)

	// Discovery providers share one TTL cache.
	discCache := cache.New(cfg.Discovery.CacheTTL)
	discService := discovery.NewService(
		discovery.NewTMDbClient(cfg.TMDb),
		discovery.NewSpotifyClient(cfg.Spotify),
		discCache,
		cfg.Discovery,
	)

	authService := auth.NewService(st, cfg.Security)
	engine := recommend.NewEngine(activityStore, cfg.Recommend)

	handlers := api.NewHandlers(cfg, st, authService, discService, activityStore, recorder, engine)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handlers.NewRouter(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddBackgroundService(consumer)
	tree.AddBackgroundService(engine)
	tree.AddBackgroundService(supervisor.NewSweeperService(discCache, "cache-sweeper"))
	tree.AddBackgroundService(supervisor.NewTokenCleanupService(st, cfg.Security.TokenCleanupInterval, logging.Logger()))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

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

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Soundwave stopped gracefully")
}
