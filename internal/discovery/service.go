// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package discovery

import (
	"context"
	"fmt"

	"github.com/soundwavehq/soundwave/internal/cache"
	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/metrics"
	"github.com/soundwavehq/soundwave/internal/models"
)

// Service fronts the provider clients with a shared TTL cache. Cache keys
// include the feed and all query parameters so variants never collide.
type Service struct {
	tmdb    *TMDbClient
	spotify *SpotifyClient
	cache   *cache.Cache

	defaultLimit int
	maxLimit     int
}

// NewService builds the discovery facade. Either client may be nil; the
// matching operations then return ErrNotConfigured.
func NewService(tmdb *TMDbClient, spotify *SpotifyClient, c *cache.Cache, cfg config.DiscoveryConfig) *Service {
	return &Service{
		tmdb:         tmdb,
		spotify:      spotify,
		cache:        c,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// ClampLimit normalizes a requested result count. Zero or negative values
// become the default; values above the maximum are capped.
func (s *Service) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// MoviesEnabled reports whether the TMDb provider is available.
func (s *Service) MoviesEnabled() bool { return s.tmdb != nil }

// MusicEnabled reports whether the Spotify provider is available.
func (s *Service) MusicEnabled() bool { return s.spotify != nil }

// SearchMovies searches TMDb, serving repeats from cache.
func (s *Service) SearchMovies(ctx context.Context, query string, limit int) ([]models.MovieSummary, error) {
	if s.tmdb == nil {
		return nil, ErrNotConfigured
	}
	limit = s.ClampLimit(limit)
	key := fmt.Sprintf("movies:search:%s:%d", query, limit)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheOps.WithLabelValues("hit").Inc()
		return cached.([]models.MovieSummary), nil
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()

	result, err := s.tmdb.SearchMovies(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

// PopularMovies lists TMDb's popular feed, serving repeats from cache.
func (s *Service) PopularMovies(ctx context.Context, limit int) ([]models.MovieSummary, error) {
	if s.tmdb == nil {
		return nil, ErrNotConfigured
	}
	limit = s.ClampLimit(limit)
	key := fmt.Sprintf("movies:popular:%d", limit)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheOps.WithLabelValues("hit").Inc()
		return cached.([]models.MovieSummary), nil
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()

	result, err := s.tmdb.PopularMovies(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

// SearchMusic searches Spotify tracks, serving repeats from cache.
func (s *Service) SearchMusic(ctx context.Context, query string, limit int) ([]models.MusicSummary, error) {
	if s.spotify == nil {
		return nil, ErrNotConfigured
	}
	limit = s.ClampLimit(limit)
	key := fmt.Sprintf("music:search:%s:%d", query, limit)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheOps.WithLabelValues("hit").Inc()
		return cached.([]models.MusicSummary), nil
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()

	result, err := s.spotify.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

// PopularMusic lists Spotify's new releases, serving repeats from cache.
func (s *Service) PopularMusic(ctx context.Context, limit int) ([]models.MusicSummary, error) {
	if s.spotify == nil {
		return nil, ErrNotConfigured
	}
	limit = s.ClampLimit(limit)
	key := fmt.Sprintf("music:popular:%d", limit)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheOps.WithLabelValues("hit").Inc()
		return cached.([]models.MusicSummary), nil
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()

	result, err := s.spotify.NewReleases(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}
