// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package activity

import (
	"fmt"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/logging"
)

// PubSub bundles the transport behind the activity pipeline. Standalone
// deployments run on an in-process GoChannel; durable deployments run on
// NATS JetStream, optionally with an embedded server.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	embedded *server.Server
}

// NewPubSub builds the activity transport from configuration.
func NewPubSub(cfg config.NATSConfig) (*PubSub, error) {
	logger := newWatermillLogger(logging.With().Str("component", "activity_pubsub").Logger())

	if !cfg.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger)
		return &PubSub{Publisher: ch, Subscriber: ch}, nil
	}

	ps := &PubSub{}
	url := cfg.URL
	if cfg.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		ps.embedded = ns
		url = ns.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		ps.shutdownEmbedded()
		return nil, fmt.Errorf("create activity publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: "soundwave-activity",
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			DurablePrefix: "soundwave-activity",
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		ps.shutdownEmbedded()
		return nil, fmt.Errorf("create activity subscriber: %w", err)
	}

	ps.Publisher = pub
	ps.Subscriber = sub
	return ps, nil
}

// Close shuts the transport down, embedded server last. In GoChannel mode
// the publisher and subscriber are the same instance and close once.
func (ps *PubSub) Close() error {
	var firstErr error
	if ps.Publisher != nil {
		if err := ps.Publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if ps.Subscriber != nil && any(ps.Subscriber) != any(ps.Publisher) {
		if err := ps.Subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ps.shutdownEmbedded()
	return firstErr
}

func (ps *PubSub) shutdownEmbedded() {
	if ps.embedded == nil {
		return
	}
	ps.embedded.Shutdown()
	ps.embedded.WaitForShutdown()
	ps.embedded = nil
}

func startEmbeddedServer(cfg config.NATSConfig) (*server.Server, error) {
	opts := &server.Options{
		ServerName:         "soundwave-activity",
		Host:               "127.0.0.1",
		Port:               server.RANDOM_PORT,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.MaxMemory,
		JetStreamMaxStore:  cfg.MaxStore,
		NoLog:              true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within timeout")
	}
	return ns, nil
}
