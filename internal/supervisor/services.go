// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer matches the *http.Server lifecycle methods so the wrapper can
// be exercised with a mock in tests.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService adapts http.Server's blocking ListenAndServe pattern to
// suture's context-aware Serve pattern. On context cancellation it calls
// Shutdown with its own timeout, since the original context is already done.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps an HTTP server as a supervised service.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return "http-server"
}

// TokenStore is the slice of the session store the cleanup worker needs.
type TokenStore interface {
	CleanupExpiredTokens(now time.Time) (int, error)
}

// TokenCleanupService periodically removes expired session token records.
type TokenCleanupService struct {
	store    TokenStore
	interval time.Duration
	logger   zerolog.Logger
}

// NewTokenCleanupService creates a token cleanup worker. The interval must
// be positive; an hour is used otherwise.
func NewTokenCleanupService(store TokenStore, interval time.Duration, logger zerolog.Logger) *TokenCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupService{store: store, interval: interval, logger: logger}
}

// Serve implements suture.Service. Cleanup failures are logged and the loop
// continues; a broken store should not crash-loop the background layer.
func (s *TokenCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.store.CleanupExpiredTokens(time.Now())
			if err != nil {
				s.logger.Error().Err(err).Msg("token cleanup failed")
				continue
			}
			if removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("expired tokens cleaned up")
			}
		}
	}
}

func (s *TokenCleanupService) String() string {
	return "token-cleanup"
}

// Sweeper is a background loop that blocks until its context is canceled.
// *cache.Cache satisfies it via Start.
type Sweeper interface {
	Start(ctx context.Context)
}

// SweeperService adapts a Sweeper to suture.Service.
type SweeperService struct {
	sweeper Sweeper
	name    string
}

// NewSweeperService wraps a Sweeper under the given service name.
func NewSweeperService(sweeper Sweeper, name string) *SweeperService {
	return &SweeperService{sweeper: sweeper, name: name}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	s.sweeper.Start(ctx)
	return ctx.Err()
}

func (s *SweeperService) String() string {
	return s.name
}
