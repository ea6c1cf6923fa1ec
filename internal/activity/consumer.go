// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package activity

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/metrics"
	"github.com/soundwavehq/soundwave/internal/models"
)

// Consumer drains the activity topic into the analytics store. It implements
// suture.Service and runs under the supervision tree.
type Consumer struct {
	subscriber message.Subscriber
	store      *Store
	topic      string
	logger     zerolog.Logger
}

// NewConsumer wires the consumer to a subscriber and the analytics store.
func NewConsumer(subscriber message.Subscriber, store *Store, topic string) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		store:      store,
		topic:      topic,
		logger:     logging.With().Str("component", "activity_consumer").Logger(),
	}
}

// Serve consumes events until the context is cancelled. Malformed payloads
// are acked and dropped; storage failures nack for redelivery.
func (c *Consumer) Serve(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}
	c.logger.Info().Str("topic", c.topic).Msg("Activity consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var ev models.ActivityEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed activity event")
		msg.Ack()
		return
	}

	if err := c.store.Append(ctx, &ev); err != nil {
		c.logger.Error().Err(err).Str("event_id", ev.ID).Msg("Failed to store activity event")
		msg.Nack()
		return
	}

	metrics.ActivityEventsStored.Inc()
	msg.Ack()
}

func (c *Consumer) String() string { return "activity-consumer" }
