// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package activity

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/metrics"
	"github.com/soundwavehq/soundwave/internal/models"
)

// Recorder publishes activity events onto the pipeline. Publishing is
// fire-and-forget from the caller's perspective: a broken pipeline is logged
// and counted but never fails the originating request.
type Recorder struct {
	publisher message.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewRecorder creates a recorder publishing to the given topic.
func NewRecorder(publisher message.Publisher, topic string) *Recorder {
	return &Recorder{
		publisher: publisher,
		topic:     topic,
		logger:    logging.With().Str("component", "activity_recorder").Logger(),
	}
}

// Record publishes one event, filling in ID and timestamp when absent.
func (r *Recorder) Record(ev models.ActivityEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(&ev)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", ev.EventType).Msg("Failed to marshal activity event")
		return
	}

	msg := message.NewMessage(ev.ID, payload)
	if err := r.publisher.Publish(r.topic, msg); err != nil {
		r.logger.Error().Err(err).Str("event_type", ev.EventType).Msg("Failed to publish activity event")
		return
	}
	metrics.ActivityEventsPublished.WithLabelValues(ev.EventType).Inc()
}
