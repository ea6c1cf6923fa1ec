// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/models"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// TMDbClient searches and lists movies via the TMDb v3 API.
type TMDbClient struct {
	baseURL string
	apiKey  string
	http    *upstreamClient
}

// NewTMDbClient creates a client from configuration. Returns nil when no API
// key is configured.
func NewTMDbClient(cfg config.TMDbConfig) *TMDbClient {
	if cfg.APIKey == "" {
		return nil
	}
	return &TMDbClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    newUpstreamClient("tmdb", cfg.Timeout, cfg.RatePerSecond),
	}
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
}

type tmdbPage struct {
	Results []tmdbMovie `json:"results"`
}

// SearchMovies returns up to limit movies matching the query.
func (c *TMDbClient) SearchMovies(ctx context.Context, query string, limit int) ([]models.MovieSummary, error) {
	params := url.Values{"query": {query}, "page": {"1"}}
	return c.fetch(ctx, "/search/movie", params, limit)
}

// PopularMovies returns up to limit movies from TMDb's popularity feed.
func (c *TMDbClient) PopularMovies(ctx context.Context, limit int) ([]models.MovieSummary, error) {
	return c.fetch(ctx, "/movie/popular", url.Values{"page": {"1"}}, limit)
}

func (c *TMDbClient) fetch(ctx context.Context, path string, params url.Values, limit int) ([]models.MovieSummary, error) {
	params.Set("api_key", c.apiKey)
	body, err := c.http.getJSON(ctx, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page tmdbPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	if len(page.Results) > limit {
		page.Results = page.Results[:limit]
	}
	out := make([]models.MovieSummary, 0, len(page.Results))
	for _, m := range page.Results {
		out = append(out, movieSummary(m))
	}
	return out, nil
}

func movieSummary(m tmdbMovie) models.MovieSummary {
	title := m.Title
	if title == "" {
		title = m.Name
	}
	poster := ""
	if m.PosterPath != "" {
		poster = tmdbImageBase + m.PosterPath
	}
	return models.MovieSummary{
		ID:          strconv.FormatInt(m.ID, 10),
		Title:       title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		PosterPath:  poster,
		Rating:      m.VoteAverage,
		Popularity:  m.Popularity,
	}
}
