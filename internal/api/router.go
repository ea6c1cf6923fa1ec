// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package api implements the HTTP surface: routing, authentication
// middleware, and request handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/activity"
	"github.com/soundwavehq/soundwave/internal/auth"
	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/discovery"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/middleware"
	"github.com/soundwavehq/soundwave/internal/recommend"
	"github.com/soundwavehq/soundwave/internal/store"
)

// Handlers carries the services behind the HTTP surface.
type Handlers struct {
	cfg       *config.Config
	store     *store.Store
	auth      *auth.Service
	discovery *discovery.Service
	activity  *activity.Store
	recorder  *activity.Recorder
	engine    *recommend.Engine
	logger    zerolog.Logger
}

// NewHandlers wires the handler set.
func NewHandlers(
	cfg *config.Config,
	st *store.Store,
	authSvc *auth.Service,
	disc *discovery.Service,
	activityStore *activity.Store,
	recorder *activity.Recorder,
	engine *recommend.Engine,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		store:     st,
		auth:      authSvc,
		discovery: disc,
		activity:  activityStore,
		recorder:  recorder,
		engine:    engine,
		logger:    logging.With().Str("component", "api").Logger(),
	}
}

// NewRouter builds the chi router with all routes and middleware.
func (h *Handlers) NewRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Prometheus)
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware(h.cfg.Security))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			// Tighter limit on credential endpoints.
			r.Group(func(r chi.Router) {
				r.Use(rateLimit(h.cfg.Security, h.cfg.Security.RateLimitAuthReqs))
				r.Post("/signup", h.handleSignup)
				r.Post("/login", h.handleLogin)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Get("/me", h.handleMe)
				r.Post("/logout", h.handleLogout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimit(h.cfg.Security, h.cfg.Security.RateLimitReqs))

			// Public share links resolve without authentication.
			r.Get("/playlists/public/{ref}", h.handlePublicPlaylist)

			r.Route("/discovery", func(r chi.Router) {
				r.Get("/movies/search", h.handleSearchMovies)
				r.Get("/movies/popular", h.handlePopularMovies)
				r.Get("/music/search", h.handleSearchMusic)
				r.Get("/music/popular", h.handlePopularMusic)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)

				r.Route("/playlists", func(r chi.Router) {
					r.Get("/", h.handleListPlaylists)
					r.Post("/", h.handleCreatePlaylist)
					r.Route("/{playlistID}", func(r chi.Router) {
						r.Get("/", h.handleGetPlaylist)
						r.Patch("/", h.handleUpdatePlaylist)
						r.Delete("/", h.handleDeletePlaylist)
						r.Post("/items", h.handleAddItem)
						r.Delete("/items/{itemID}", h.handleRemoveItem)
						r.Post("/reorder", h.handleReorderItems)
						r.Post("/share/invite", h.handleShareInvite)
						r.Delete("/share/{userID}", h.handleShareRevoke)
					})
				})

				r.Get("/activity", h.handleActivityFeed)
				r.Get("/recommendations", h.handleRecommendations)
			})
		})
	})

	return r
}

// handleHealth reports process liveness.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"movies_enabled":    h.discovery.MoviesEnabled(),
		"music_enabled":     h.discovery.MusicEnabled(),
		"recommender_ready": h.engine.Trained(),
	})
}
