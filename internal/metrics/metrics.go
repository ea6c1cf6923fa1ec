// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package metrics defines the Prometheus metrics exposed at /metrics.
// All metrics register on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_http_requests_total",
			Help: "Total HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundwave_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthAttempts counts login and signup outcomes.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_auth_attempts_total",
			Help: "Authentication attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamRequests counts discovery provider calls by provider and outcome.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_upstream_requests_total",
			Help: "Discovery provider requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// UpstreamBreakerState reports the circuit breaker state per provider
	// (0 closed, 1 half-open, 2 open).
	UpstreamBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soundwave_upstream_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// CacheOps counts discovery cache hits and misses.
	CacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_cache_ops_total",
			Help: "Discovery cache operations by result",
		},
		[]string{"result"},
	)

	// ActivityEventsPublished counts events published to the activity topic.
	ActivityEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_activity_events_published_total",
			Help: "Activity events published by event type",
		},
		[]string{"event_type"},
	)

	// ActivityEventsStored counts events persisted to the analytics store.
	ActivityEventsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soundwave_activity_events_stored_total",
			Help: "Activity events persisted to the analytics store",
		},
	)

	// TrainingRuns counts recommendation training runs by outcome.
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_training_runs_total",
			Help: "Recommendation training runs by outcome",
		},
		[]string{"outcome"},
	)

	// TrainingDuration observes recommendation training latency.
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soundwave_training_duration_seconds",
			Help:    "Recommendation training latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// ModelItems reports the item count in the trained model.
	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soundwave_model_items",
			Help: "Item count in the current recommendation model",
		},
	)

	// RecommendationsServed counts recommendation responses, split by whether
	// the popularity fallback was used.
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundwave_recommendations_served_total",
			Help: "Recommendation responses by source",
		},
		[]string{"source"},
	)
)
