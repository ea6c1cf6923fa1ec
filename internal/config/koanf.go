// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// defaultConfig returns the built-in defaults applied before any file or
// environment overrides.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Path: "/data/soundwave",
		},
		Activity: ActivityConfig{
			DatabasePath: "/data/soundwave-activity.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			Topic:        "activity.events",
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://localhost:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats",
			MaxMemory:      256 * 1024 * 1024,
			MaxStore:       1024 * 1024 * 1024,
		},
		TMDb: TMDbConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			Timeout:       10 * time.Second,
			RatePerSecond: 4,
		},
		Spotify: SpotifyConfig{
			AuthBaseURL:   "https://accounts.spotify.com",
			APIBaseURL:    "https://api.spotify.com/v1",
			Timeout:       10 * time.Second,
			RatePerSecond: 4,
		},
		Discovery: DiscoveryConfig{
			CacheTTL:     5 * time.Minute,
			DefaultLimit: 10,
			MaxLimit:     50,
		},
		Recommend: RecommendConfig{
			TrainInterval:   15 * time.Minute,
			TrainOnStartup:  true,
			MinInteractions: 10,
			SessionWindow:   24 * time.Hour,
			MinCoOccurrence: 2,
			EventWeights: map[string]float64{
				"like":         1.0,
				"playlist_add": 1.5,
			},
			MaxResults: 100,
		},
		Security: SecurityConfig{
			SessionTimeout:       30 * time.Minute,
			BcryptCost:           10,
			TokenCleanupInterval: time.Hour,
			RateLimitReqs:        100,
			RateLimitAuthReqs:    10,
			RateLimitWindow:      time.Minute,
			CORSOrigins:          []string{"http://localhost:3000"},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// envKeyMap maps well-known environment variables onto config paths. Variables
// not listed here fall through to the generic SECTION_FIELD convention.
var envKeyMap = map[string]string{
	"HTTP_PORT":              "server.port",
	"HTTP_HOST":              "server.host",
	"SERVER_TIMEOUT":         "server.timeout",
	"ENVIRONMENT":            "server.environment",
	"DATA_PATH":              "store.path",
	"JWT_SECRET":             "security.jwt_secret",
	"SESSION_TIMEOUT":        "security.session_timeout",
	"BCRYPT_COST":            "security.bcrypt_cost",
	"RATE_LIMIT_REQS":        "security.rate_limit_reqs",
	"RATE_LIMIT_AUTH_REQS":   "security.rate_limit_auth_reqs",
	"RATE_LIMIT_WINDOW":      "security.rate_limit_window",
	"RATE_LIMIT_DISABLED":    "security.rate_limit_disabled",
	"CORS_ORIGINS":           "security.cors_origins",
	"TMDB_API_KEY":           "tmdb.api_key",
	"TMDB_BASE_URL":          "tmdb.base_url",
	"SPOTIFY_CLIENT_ID":      "spotify.client_id",
	"SPOTIFY_CLIENT_SECRET":  "spotify.client_secret",
	"SPOTIFY_AUTH_BASE_URL":  "spotify.auth_base_url",
	"SPOTIFY_API_BASE_URL":   "spotify.api_base_url",
	"ACTIVITY_DATABASE_PATH": "activity.database_path",
	"ACTIVITY_TOPIC":         "activity.topic",
	"NATS_ENABLED":           "nats.enabled",
	"NATS_URL":               "nats.url",
	"NATS_EMBEDDED_SERVER":   "nats.embedded_server",
	"DISCOVERY_CACHE_TTL":    "discovery.cache_ttl",
	"TRAIN_INTERVAL":         "recommend.train_interval",
	"MIN_INTERACTIONS":       "recommend.min_interactions",
	"LOG_LEVEL":              "logging.level",
	"LOG_FORMAT":             "logging.format",
}

// knownSections guards the generic env fallback so unrelated variables in the
// process environment are not merged into the config tree.
var knownSections = map[string]bool{
	"server": true, "store": true, "activity": true, "nats": true,
	"tmdb": true, "spotify": true, "discovery": true, "recommend": true,
	"security": true, "api": true, "logging": true,
}

// envTransformFunc converts an environment variable name to a koanf config
// path. Explicit mappings win; otherwise SECTION_FIELD_NAME becomes
// section.field_name for known sections, and anything else is ignored.
func envTransformFunc(key string) string {
	if mapped, ok := envKeyMap[key]; ok {
		return mapped
	}
	lower := strings.ToLower(key)
	section, rest, found := strings.Cut(lower, "_")
	if !found || !knownSections[section] || rest == "" {
		return ""
	}
	return section + "." + rest
}

// findConfigFile returns the config file path, checking CONFIG_PATH first and
// then the conventional locations. Returns "" when no file exists.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "config.yml", "/etc/soundwave/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	processSliceFields(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// processSliceFields splits comma-separated values that arrive as single-element
// slices from environment variables.
func processSliceFields(cfg *Config) {
	cfg.Security.CORSOrigins = splitCommaField(cfg.Security.CORSOrigins)
}

func splitCommaField(values []string) []string {
	if len(values) != 1 || !strings.Contains(values[0], ",") {
		return values
	}
	parts := strings.Split(values[0], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
