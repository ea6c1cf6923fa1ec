// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package discovery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/models"
)

// SpotifyClient searches tracks and lists new releases via the Spotify Web
// API using the client-credentials flow.
type SpotifyClient struct {
	apiBaseURL string
	tokenURL   string
	authHeader string
	http       *upstreamClient
	tokenHTTP  *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewSpotifyClient creates a client from configuration. Returns nil when
// credentials are missing.
func NewSpotifyClient(cfg config.SpotifyConfig) *SpotifyClient {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	return &SpotifyClient{
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		tokenURL:   strings.TrimRight(cfg.AuthBaseURL, "/") + "/api/token",
		authHeader: "Basic " + creds,
		http:       newUpstreamClient("spotify", cfg.Timeout, cfg.RatePerSecond),
		tokenHTTP:  &http.Client{Timeout: cfg.Timeout},
	}
}

// accessToken returns a valid bearer token, fetching a fresh one when the
// cached token is missing, near expiry, or force is set. Tokens renew at 90%
// of their lifetime, never later than 30 seconds before expiry.
func (c *SpotifyClient) accessToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.tokenHTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token fetch: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: token fetch status %d", ErrUpstream, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: token fetch: %v", ErrUpstream, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: token fetch returned no token", ErrUpstream)
	}
	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	margin := expiresIn * 9 / 10
	if margin < 30 {
		margin = 30
	}

	c.token = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(margin) * time.Second)
	return c.token, nil
}

// get performs an authorized GET, refreshing the token and retrying once on
// a 401.
func (c *SpotifyClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx, false)
	if err != nil {
		return nil, err
	}

	fullURL := c.apiBaseURL + path + "?" + params.Encode()
	body, err := c.http.getJSON(ctx, fullURL, map[string]string{"Authorization": "Bearer " + token})
	if errors.As(err, &unauthorizedError{}) {
		token, err = c.accessToken(ctx, true)
		if err != nil {
			return nil, err
		}
		body, err = c.http.getJSON(ctx, fullURL, map[string]string{"Authorization": "Bearer " + token})
	}
	if err != nil {
		if errors.As(err, &unauthorizedError{}) {
			return nil, fmt.Errorf("%w: unauthorized", ErrUpstream)
		}
		return nil, err
	}
	return body, nil
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyAlbum struct {
	Name    string          `json:"name"`
	Images  []spotifyImage  `json:"images"`
	Artists []spotifyArtist `json:"artists"`
	ID      string          `json:"id"`
}

type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	PreviewURL string          `json:"preview_url"`
	Popularity int             `json:"popularity"`
}

// SearchTracks returns up to limit tracks matching the query.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.MusicSummary, error) {
	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprint(limit)},
	}
	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	out := make([]models.MusicSummary, 0, len(payload.Tracks.Items))
	for _, t := range payload.Tracks.Items {
		out = append(out, trackSummary(t))
	}
	return out, nil
}

// NewReleases returns up to limit albums from Spotify's new releases feed.
func (c *SpotifyClient) NewReleases(ctx context.Context, limit int) ([]models.MusicSummary, error) {
	body, err := c.get(ctx, "/browse/new-releases", url.Values{"limit": {fmt.Sprint(limit)}})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Albums struct {
			Items []spotifyAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	out := make([]models.MusicSummary, 0, len(payload.Albums.Items))
	for _, a := range payload.Albums.Items {
		out = append(out, albumSummary(a))
	}
	return out, nil
}

func trackSummary(t spotifyTrack) models.MusicSummary {
	image := ""
	if len(t.Album.Images) > 0 {
		image = t.Album.Images[0].URL
	}
	return models.MusicSummary{
		ID:         t.ID,
		Title:      t.Name,
		Artists:    artistNames(t.Artists),
		Album:      t.Album.Name,
		ImageURL:   image,
		PreviewURL: t.PreviewURL,
		Popularity: t.Popularity,
	}
}

func albumSummary(a spotifyAlbum) models.MusicSummary {
	image := ""
	if len(a.Images) > 0 {
		image = a.Images[0].URL
	}
	return models.MusicSummary{
		ID:       a.ID,
		Title:    a.Name,
		Artists:  artistNames(a.Artists),
		Album:    a.Name,
		ImageURL: image,
	}
}

func artistNames(artists []spotifyArtist) []string {
	out := make([]string, 0, len(artists))
	for _, a := range artists {
		out = append(out, a.Name)
	}
	return out
}
