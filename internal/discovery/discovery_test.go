// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soundwavehq/soundwave/internal/cache"
	"github.com/soundwavehq/soundwave/internal/config"
)

func tmdbConfig(baseURL string) config.TMDbConfig {
	return config.TMDbConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func spotifyConfig(authURL, apiURL string) config.SpotifyConfig {
	return config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthBaseURL:  authURL,
		APIBaseURL:   apiURL,
		Timeout:      5 * time.Second,
	}
}

func TestTMDb_SearchMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("missing api_key parameter")
		}
		if r.URL.Query().Get("query") != "matrix" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":603,"title":"The Matrix","overview":"o","release_date":"1999-03-31","poster_path":"/p.jpg","vote_average":8.2,"popularity":90.5},
			{"id":604,"title":"Reloaded","vote_average":7.0,"popularity":60.1}
		]}`))
	}))
	defer srv.Close()

	c := NewTMDbClient(tmdbConfig(srv.URL))
	got, err := c.SearchMovies(context.Background(), "matrix", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "603" || got[0].Title != "The Matrix" {
		t.Errorf("unexpected first result: %+v", got[0])
	}
	if got[0].PosterPath != tmdbImageBase+"/p.jpg" {
		t.Errorf("poster path not expanded: %q", got[0].PosterPath)
	}
	if got[1].PosterPath != "" {
		t.Errorf("missing poster should stay empty, got %q", got[1].PosterPath)
	}
}

func TestTMDb_LimitTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1},{"id":2},{"id":3}]}`))
	}))
	defer srv.Close()

	c := NewTMDbClient(tmdbConfig(srv.URL))
	got, err := c.PopularMovies(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected truncation to 2, got %d", len(got))
	}
}

func TestTMDb_RateLimitedSingleRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"x"}]}`))
	}))
	defer srv.Close()

	c := NewTMDbClient(tmdbConfig(srv.URL))
	got, err := c.PopularMovies(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(got) != 1 || calls.Load() != 2 {
		t.Errorf("expected 1 result after 2 calls, got %d results, %d calls", len(got), calls.Load())
	}
}

func TestTMDb_RateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewTMDbClient(tmdbConfig(srv.URL))
	_, err := c.PopularMovies(context.Background(), 10)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream after exhausted retries, got %v", err)
	}
}

func TestTMDb_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewTMDbClient(tmdbConfig(srv.URL))
	if _, err := c.PopularMovies(context.Background(), 10); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestTMDb_UnauthorizedIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// A rejected API key has no refresh path and must surface as an
	// upstream failure, not an internal error.
	c := NewTMDbClient(tmdbConfig(srv.URL))
	if _, err := c.SearchMovies(context.Background(), "matrix", 10); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestSpotify_TokenFetchAndSearch(t *testing.T) {
	var tokenCalls atomic.Int32
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if r.URL.Path != "/api/token" {
			t.Errorf("unexpected token path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing basic auth header")
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("unexpected bearer: %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[
			{"id":"t1","name":"Song","artists":[{"name":"A"},{"name":"B"}],"album":{"name":"Al","images":[{"url":"http://img"}]},"popularity":55}
		]}}`))
	}))
	defer api.Close()

	c := NewSpotifyClient(spotifyConfig(auth.URL, api.URL))
	got, err := c.SearchTracks(context.Background(), "song", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 track, got %d", len(got))
	}
	if got[0].ID != "t1" || len(got[0].Artists) != 2 || got[0].ImageURL != "http://img" {
		t.Errorf("unexpected track: %+v", got[0])
	}

	// Second call reuses the cached token.
	if _, err := c.SearchTracks(context.Background(), "song", 10); err != nil {
		t.Fatal(err)
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("expected 1 token fetch, got %d", tokenCalls.Load())
	}
}

func TestSpotify_RefreshesTokenOn401(t *testing.T) {
	var tokenCalls atomic.Int32
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := tokenCalls.Add(1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"access_token":"stale","expires_in":3600}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"fresh","expires_in":3600}`))
	}))
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"albums":{"items":[{"id":"a1","name":"New"}]}}`))
	}))
	defer api.Close()

	c := NewSpotifyClient(spotifyConfig(auth.URL, api.URL))
	got, err := c.NewReleases(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected 401 refresh to recover, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("unexpected releases: %+v", got)
	}
	if tokenCalls.Load() != 2 {
		t.Errorf("expected 2 token fetches, got %d", tokenCalls.Load())
	}
}

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil, nil, cache.New(time.Minute), config.DiscoveryConfig{DefaultLimit: 10, MaxLimit: 50})

	if _, err := svc.SearchMovies(context.Background(), "x", 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := svc.PopularMusic(context.Background(), 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestService_CachesPopularFeed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"x"}]}`))
	}))
	defer srv.Close()

	svc := NewService(NewTMDbClient(tmdbConfig(srv.URL)), nil, cache.New(time.Minute),
		config.DiscoveryConfig{DefaultLimit: 10, MaxLimit: 50})

	for i := 0; i < 3; i++ {
		if _, err := svc.PopularMovies(context.Background(), 10); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls.Load())
	}

	// A different limit is a different cache key.
	if _, err := svc.PopularMovies(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 upstream calls after limit change, got %d", calls.Load())
	}
}

func TestService_ClampLimit(t *testing.T) {
	svc := NewService(nil, nil, cache.New(time.Minute), config.DiscoveryConfig{DefaultLimit: 10, MaxLimit: 50})

	if got := svc.ClampLimit(0); got != 10 {
		t.Errorf("zero should become default, got %d", got)
	}
	if got := svc.ClampLimit(-3); got != 10 {
		t.Errorf("negative should become default, got %d", got)
	}
	if got := svc.ClampLimit(500); got != 50 {
		t.Errorf("oversized should cap at max, got %d", got)
	}
	if got := svc.ClampLimit(7); got != 7 {
		t.Errorf("in-range should pass through, got %d", got)
	}
}
