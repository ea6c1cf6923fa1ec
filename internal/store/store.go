// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package store implements the primary document store on BadgerDB.
//
// Key layout:
//
//	user:<id>                  -> models.User (JSON)
//	user_email:<email>         -> user ID (raw string)
//	playlist:<id>              -> models.Playlist (JSON)
//	playlist_slug:<slug>       -> playlist ID (raw string)
//	item:<playlistID>:<itemID> -> models.PlaylistItem (JSON)
//	token:<token>              -> models.TokenRecord (JSON)
//
// All multi-key mutations run inside a single Badger transaction so indexes
// never drift from their documents.
package store

import (
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/logging"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when signing up with an email already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrBadReorder is returned when a reorder request is not an exact
	// permutation of the playlist's current item IDs.
	ErrBadReorder = errors.New("new order must include all items exactly once")
)

const (
	prefixUser         = "user:"
	prefixUserEmail    = "user_email:"
	prefixPlaylist     = "playlist:"
	prefixPlaylistSlug = "playlist_slug:"
	prefixItem         = "item:"
	prefixToken        = "token:"
)

// Store is the BadgerDB-backed document store for users, playlists, playlist
// items, and token records. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) the store at the configured path.
func Open(cfg config.StoreConfig) (*Store, error) {
	logger := logging.With().Str("component", "store").Logger()

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(badgerLogger{logger}).
		WithCompactL0OnClose(true)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Document store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC triggers one value-log garbage collection pass. Badger returns
// ErrNoRewrite when nothing was collected, which is not an error here.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// getJSON reads and unmarshals one document inside the given transaction.
func getJSON(txn *badger.Txn, key string, out interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// setJSON marshals and writes one document inside the given transaction.
func setJSON(txn *badger.Txn, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// getString reads a raw index value inside the given transaction.
func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	var out string
	err = item.Value(func(val []byte) error {
		out = string(val)
		return nil
	})
	return out, err
}

func keyExists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// badgerLogger adapts zerolog to Badger's logging interface. Badger's INFO
// chatter maps to debug to keep operational logs quiet.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
