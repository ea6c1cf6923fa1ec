// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package activity

import (
	"context"
	"testing"
	"time"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(config.ActivityConfig{
		DatabasePath: ":memory:",
		MaxMemory:    "256MB",
		Threads:      1,
		Topic:        "activity.events",
	})
	if err != nil {
		t.Fatalf("failed to open activity store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	events := []models.ActivityEvent{
		{ID: "e1", UserID: "u1", EventType: models.EventPlaylistCreated, PlaylistID: "p1", OccurredAt: base},
		{ID: "e2", UserID: "u1", EventType: models.EventItemAdded, PlaylistID: "p1", MediaType: "movie", MediaID: "603", OccurredAt: base.Add(time.Minute)},
		{ID: "e3", UserID: "u2", EventType: models.EventLike, MediaType: "music", MediaID: "track-9", OccurredAt: base.Add(2 * time.Minute)},
	}
	for i := range events {
		if err := s.Append(ctx, &events[i]); err != nil {
			t.Fatalf("append %s failed: %v", events[i].ID, err)
		}
	}

	// Duplicate IDs are ignored, not errors.
	if err := s.Append(ctx, &events[0]); err != nil {
		t.Errorf("duplicate append should be ignored, got %v", err)
	}
	if n, _ := s.CountEvents(ctx); n != 3 {
		t.Errorf("expected 3 events, got %d", n)
	}

	recent, err := s.RecentForUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "e2" || recent[1].ID != "e1" {
		t.Errorf("expected newest-first events for u1, got %+v", recent)
	}
}

func TestStore_InteractionsWeighting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []models.ActivityEvent{
		{ID: "a", UserID: "u1", EventType: models.EventItemAdded, MediaType: "movie", MediaID: "603", OccurredAt: now},
		{ID: "b", UserID: "u1", EventType: models.EventLike, MediaType: "movie", MediaID: "604", OccurredAt: now},
		{ID: "c", UserID: "u1", EventType: models.EventPlaylistCreated, PlaylistID: "p1", OccurredAt: now},
		{ID: "d", UserID: "u1", EventType: models.EventItemRemoved, MediaType: "movie", MediaID: "603", OccurredAt: now},
	}
	for i := range seed {
		if err := s.Append(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	weights := map[string]float64{"like": 1.0, "playlist_add": 1.5}
	got, err := s.Interactions(ctx, weights)
	if err != nil {
		t.Fatalf("interactions failed: %v", err)
	}

	// playlist_created has no media and item_removed has no weight.
	if len(got) != 2 {
		t.Fatalf("expected 2 interactions, got %d: %+v", len(got), got)
	}
	byItem := map[string]float64{}
	for _, in := range got {
		byItem[in.ItemID] = in.Weight
	}
	if byItem["movie:603"] != 1.5 {
		t.Errorf("item_added should weigh 1.5, got %g", byItem["movie:603"])
	}
	if byItem["movie:604"] != 1.0 {
		t.Errorf("like should weigh 1.0, got %g", byItem["movie:604"])
	}
}

func TestRecorderConsumer_EndToEnd(t *testing.T) {
	s := newTestStore(t)

	ps, err := NewPubSub(config.NATSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to build pubsub: %v", err)
	}
	t.Cleanup(func() { _ = ps.Close() })

	consumer := NewConsumer(ps.Subscriber, s, "activity.events")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = consumer.Serve(ctx) }()

	// Give the subscriber a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	rec := NewRecorder(ps.Publisher, "activity.events")
	rec.Record(models.ActivityEvent{UserID: "u1", EventType: models.EventLike, MediaType: "movie", MediaID: "603"})

	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := s.CountEvents(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event never reached the store")
		}
		time.Sleep(20 * time.Millisecond)
	}

	events, err := s.RecentForUser(context.Background(), "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].EventType != models.EventLike {
		t.Errorf("unexpected stored event: %+v", events)
	}
	if events[0].ID == "" {
		t.Error("recorder should assign an event ID")
	}
}
