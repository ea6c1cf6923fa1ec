// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Activity  ActivityConfig  `koanf:"activity"`
	NATS      NATSConfig      `koanf:"nats"`      // Optional: durable event pipeline
	TMDb      TMDbConfig      `koanf:"tmdb"`      // Optional: movie discovery provider
	Spotify   SpotifyConfig   `koanf:"spotify"`   // Optional: music discovery provider
	Discovery DiscoveryConfig `koanf:"discovery"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - SERVER_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: "development" or "production"
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// StoreConfig holds BadgerDB document store settings.
// The store keeps users, playlists, playlist items, and auth token records.
type StoreConfig struct {
	// Path is the BadgerDB data directory.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence (tests, ephemeral dev).
	InMemory bool `koanf:"in_memory"`
}

// ActivityConfig holds settings for the DuckDB-backed activity store and the
// Watermill pipeline feeding it.
type ActivityConfig struct {
	// DatabasePath is the DuckDB database file for activity analytics.
	DatabasePath string `koanf:"database_path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// Topic is the pub/sub topic for activity events.
	Topic string `koanf:"topic"`
}

// NATSConfig holds optional NATS JetStream settings for the activity pipeline.
// When disabled, events flow through an in-process GoChannel pub/sub instead.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`
}

// TMDbConfig holds TMDb API settings for movie discovery.
//
// Environment Variables:
//   - TMDB_API_KEY: API key (movie discovery disabled when empty)
//   - TMDB_BASE_URL: API base URL override (default: https://api.themoviedb.org/3)
type TMDbConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond caps outbound request rate. 0 = unlimited.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// SpotifyConfig holds Spotify API settings for music discovery.
// Authentication uses the client-credentials flow.
type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	AuthBaseURL  string        `koanf:"auth_base_url"`
	APIBaseURL   string        `koanf:"api_base_url"`
	Timeout      time.Duration `koanf:"timeout"`

	// RatePerSecond caps outbound request rate. 0 = unlimited.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// DiscoveryConfig holds settings shared across discovery providers.
type DiscoveryConfig struct {
	// CacheTTL is how long popular feeds are cached.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// DefaultLimit is the result count when the client omits ?limit.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps the ?limit query parameter.
	MaxLimit int `koanf:"max_limit"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// TrainInterval is the period between background training runs.
	TrainInterval time.Duration `koanf:"train_interval"`

	// TrainOnStartup triggers one training pass before serving requests.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// MinInteractions is the minimum interaction count required to train the
	// personalized model. Below it, only the popularity baseline is used.
	MinInteractions int `koanf:"min_interactions"`

	// SessionWindow groups interactions into co-visitation sessions.
	SessionWindow time.Duration `koanf:"session_window"`

	// MinCoOccurrence is the minimum pair count kept by the co-visitation model.
	MinCoOccurrence int `koanf:"min_co_occurrence"`

	// EventWeights maps activity event types to interaction confidence.
	EventWeights map[string]float64 `koanf:"event_weights"`

	// MaxResults caps the ?limit query parameter on the recommendations endpoint.
	MaxResults int `koanf:"max_results"`
}

// SecurityConfig holds authentication and rate limiting settings.
//
// Environment Variables:
//   - JWT_SECRET: Token signing secret (32+ characters in production)
//   - SESSION_TIMEOUT: Access token lifetime (default: 30m)
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// TokenCleanupInterval is how often expired token records are purged.
	TokenCleanupInterval time.Duration `koanf:"token_cleanup_interval"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitAuthReqs int           `koanf:"rate_limit_auth_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// APIConfig holds API response limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TMDbEnabled reports whether the TMDb provider is configured.
func (c *Config) TMDbEnabled() bool {
	return c.TMDb.APIKey != ""
}

// SpotifyEnabled reports whether the Spotify provider is configured.
func (c *Config) SpotifyEnabled() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks the configuration for malformed or missing required values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but was empty")
	}
	if c.IsProduction() && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %s", c.Security.SessionTimeout)
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be between 4 and 31, got %d", c.Security.BcryptCost)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.Activity.DatabasePath == "" {
		return fmt.Errorf("activity.database_path is required")
	}
	if c.Activity.Topic == "" {
		return fmt.Errorf("activity.topic is required")
	}

	if c.NATS.Enabled && !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when NATS is enabled without an embedded server")
	}

	if c.Spotify.ClientID != "" && c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify.client_secret is required when spotify.client_id is set")
	}

	if c.Discovery.DefaultLimit < 1 || c.Discovery.DefaultLimit > c.Discovery.MaxLimit {
		return fmt.Errorf("discovery.default_limit must be between 1 and discovery.max_limit")
	}

	if c.Recommend.TrainInterval <= 0 {
		return fmt.Errorf("recommend.train_interval must be positive, got %s", c.Recommend.TrainInterval)
	}
	if c.Recommend.MaxResults < 1 {
		return fmt.Errorf("recommend.max_results must be positive, got %d", c.Recommend.MaxResults)
	}
	for event, weight := range c.Recommend.EventWeights {
		if weight <= 0 {
			return fmt.Errorf("recommend.event_weights[%s] must be positive, got %g", event, weight)
		}
	}

	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be between 1 and api.max_page_size")
	}

	return nil
}
