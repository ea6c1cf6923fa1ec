// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package activity implements the activity event pipeline: mutations publish
// events through Watermill, a consumer persists them to DuckDB, and the
// recommendation pipeline reads weighted interactions back out.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_events (
    id          VARCHAR PRIMARY KEY,
    user_id     VARCHAR NOT NULL,
    event_type  VARCHAR NOT NULL,
    playlist_id VARCHAR,
    media_type  VARCHAR,
    media_id    VARCHAR,
    occurred_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_events (user_id);
CREATE INDEX IF NOT EXISTS idx_activity_occurred ON activity_events (occurred_at);
`

// Store persists activity events in DuckDB for the feed and the
// recommendation pipeline.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenStore opens (or creates) the analytics database. Auto-install of
// DuckDB extensions stays disabled so startup cannot hang on network access.
func OpenStore(cfg config.ActivityConfig) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.DatabasePath, threads, cfg.MaxMemory)
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}

	// DuckDB handles single-writer workloads best with one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize activity schema: %w", err)
	}

	logger := logging.With().Str("component", "activity_store").Logger()
	logger.Info().Str("path", cfg.DatabasePath).Msg("Activity store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one event.
func (s *Store) Append(ctx context.Context, ev *models.ActivityEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO activity_events (id, user_id, event_type, playlist_id, media_type, media_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, ev.EventType, ev.PlaylistID, ev.MediaType, ev.MediaID, ev.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}
	return nil
}

// RecentForUser returns the user's newest events, most recent first.
func (s *Store) RecentForUser(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_type, coalesce(playlist_id, ''), coalesce(media_type, ''), coalesce(media_id, ''), occurred_at
		 FROM activity_events
		 WHERE user_id = ?
		 ORDER BY occurred_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity events: %w", err)
	}
	defer rows.Close()

	events := []models.ActivityEvent{}
	for rows.Next() {
		var ev models.ActivityEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.EventType, &ev.PlaylistID, &ev.MediaType, &ev.MediaID, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Interactions returns weighted user-item signals for the recommender.
// Only events that carry a media reference and have a configured weight
// contribute. Likes map directly; item_added events count as playlist_add.
func (s *Store) Interactions(ctx context.Context, weights map[string]float64) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, event_type, media_type, media_id, occurred_at
		 FROM activity_events
		 WHERE media_id IS NOT NULL AND media_id <> ''
		 ORDER BY occurred_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	out := []models.Interaction{}
	for rows.Next() {
		var userID, eventType, mediaType, mediaID string
		var occurredAt time.Time
		if err := rows.Scan(&userID, &eventType, &mediaType, &mediaID, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}

		weight, ok := weights[interactionKind(eventType)]
		if !ok {
			continue
		}
		out = append(out, models.Interaction{
			UserID:     userID,
			ItemID:     mediaType + ":" + mediaID,
			Weight:     weight,
			OccurredAt: occurredAt,
		})
	}
	return out, rows.Err()
}

// interactionKind maps raw event types onto the weight table's vocabulary.
func interactionKind(eventType string) string {
	if eventType == models.EventItemAdded {
		return "playlist_add"
	}
	return eventType
}

// CountEvents returns the total event count.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM activity_events`).Scan(&n)
	return n, err
}
