// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/metrics"
	"github.com/soundwavehq/soundwave/internal/models"
)

// ErrNoRecommendations is returned when no items can be recommended at all,
// such as before any interactions exist.
var ErrNoRecommendations = errors.New("no recommendations available")

// ErrNotTrained is returned before the first training pass completes.
var ErrNotTrained = errors.New("recommendation model not trained yet")

// InteractionSource supplies weighted interactions for training.
type InteractionSource interface {
	Interactions(ctx context.Context, weights map[string]float64) ([]models.Interaction, error)
}

// Engine trains models in the background and serves recommendations from the
// latest trained model.
type Engine struct {
	source InteractionSource
	cfg    config.RecommendConfig
	model  atomic.Pointer[Model]
	logger zerolog.Logger
}

// NewEngine creates an engine reading interactions from source.
func NewEngine(source InteractionSource, cfg config.RecommendConfig) *Engine {
	return &Engine{
		source: source,
		cfg:    cfg,
		logger: logging.With().Str("component", "recommend").Logger(),
	}
}

// Train builds a fresh model from current interactions and swaps it in.
func (e *Engine) Train(ctx context.Context) error {
	start := time.Now()

	interactions, err := e.source.Interactions(ctx, e.cfg.EventWeights)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return err
	}

	model := Train(BuildDataset(interactions), Params{
		SessionWindow:   e.cfg.SessionWindow,
		MinCoOccurrence: e.cfg.MinCoOccurrence,
		MinInteractions: e.cfg.MinInteractions,
	})
	e.model.Store(model)

	metrics.TrainingRuns.WithLabelValues("success").Inc()
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	metrics.ModelItems.Set(float64(model.ItemCount()))
	e.logger.Info().
		Int("interactions", len(interactions)).
		Int("items", model.ItemCount()).
		Bool("personalized", model.personalized).
		Dur("took", time.Since(start)).
		Msg("Recommendation model trained")
	return nil
}

// Recommend returns up to limit item IDs for the user, with a flag telling
// whether the popularity fallback contributed.
func (e *Engine) Recommend(userID string, limit int) ([]string, bool, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}

	model := e.model.Load()
	if model == nil {
		return nil, false, ErrNotTrained
	}

	items, fallbackUsed := model.Recommend(userID, limit)
	if len(items) == 0 {
		return nil, false, ErrNoRecommendations
	}

	source := "personalized"
	if fallbackUsed {
		source = "fallback"
	}
	metrics.RecommendationsServed.WithLabelValues(source).Inc()
	return items, fallbackUsed, nil
}

// Trained reports whether a model is available.
func (e *Engine) Trained() bool {
	return e.model.Load() != nil
}

// Serve retrains on the configured interval until the context is cancelled.
// It implements suture.Service. Training failures are logged and retried on
// the next tick rather than restarting the service.
func (e *Engine) Serve(ctx context.Context) error {
	if e.cfg.TrainOnStartup {
		if err := e.Train(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error().Err(err).Msg("Initial training failed")
		}
	}

	ticker := time.NewTicker(e.cfg.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Train(ctx); err != nil && ctx.Err() == nil {
				e.logger.Error().Err(err).Msg("Training failed")
			}
		}
	}
}

func (e *Engine) String() string { return "recommend-trainer" }
