// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package discovery implements media discovery against TMDb and Spotify.
//
// Each provider client carries its own circuit breaker and outbound rate
// limiter. Rate-limited responses (429) are retried once, honoring the
// Retry-After header capped at one second. Provider failures surface as
// ErrUpstream; unconfigured providers as ErrNotConfigured.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/metrics"
)

var (
	// ErrNotConfigured is returned when the provider has no credentials.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrUpstream is returned when the provider request fails.
	ErrUpstream = errors.New("upstream provider error")

	// ErrRateLimited is returned when the provider stays rate limited after
	// the retry.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrUpstream)
)

// unauthorizedError marks a 401 so the Spotify client can refresh its token.
// It wraps ErrUpstream: a 401 nobody intercepts (a bad TMDb API key, a
// Spotify refresh that still fails) is an upstream failure like any other.
type unauthorizedError struct{}

func (unauthorizedError) Error() string { return "unauthorized" }
func (unauthorizedError) Unwrap() error { return ErrUpstream }

// upstreamClient is the shared HTTP plumbing for provider calls.
type upstreamClient struct {
	provider string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

func newUpstreamClient(provider string, timeout time.Duration, ratePerSecond float64) *upstreamClient {
	logger := logging.With().Str("component", "discovery").Str("provider", provider).Logger()

	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), int(ratePerSecond)+1)
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			metrics.UpstreamBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &upstreamClient{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
		breaker:  breaker,
		limiter:  limiter,
		logger:   logger,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}

// getJSON performs a GET through the breaker and returns the response body.
// A single 429 retry honors Retry-After, capped at one second.
func (c *upstreamClient) getJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.attemptWithRetry(ctx, url, headers)
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(c.provider, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUpstream)
		}
		return nil, err
	}
	metrics.UpstreamRequests.WithLabelValues(c.provider, "success").Inc()
	return body, nil
}

func (c *upstreamClient) attemptWithRetry(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		body, status, retryAfter, err := c.attempt(ctx, url, headers)
		if err != nil {
			return nil, err
		}

		switch {
		case status == http.StatusTooManyRequests:
			if attempt == 1 {
				return nil, ErrRateLimited
			}
			c.logger.Warn().Dur("delay", retryAfter).Msg("Provider rate limited, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfter):
			}
		case status == http.StatusUnauthorized:
			return nil, unauthorizedError{}
		case status >= 400:
			c.logger.Error().Int("status", status).Msg("Provider request failed")
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, status)
		default:
			return body, nil
		}
	}
	return nil, ErrRateLimited
}

func (c *upstreamClient) attempt(ctx context.Context, url string, headers map[string]string) ([]byte, int, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, 0, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body, resp.StatusCode, 0, nil
}

// parseRetryAfter caps the provider's Retry-After at one second so a slow
// provider cannot stall request handling.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 200 * time.Millisecond
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs <= 0 {
		return 200 * time.Millisecond
	}
	if secs > 1 {
		return time.Second
	}
	return time.Duration(secs * float64(time.Second))
}
