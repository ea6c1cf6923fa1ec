// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package store

import (
	"sort"
	"strconv"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/soundwavehq/soundwave/internal/models"
)

// Slugify converts a title to a URL-safe slug. Only ASCII lowercase letters
// and digits survive; other runs collapse to single hyphens, and an empty
// result falls back to "playlist".
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		return "playlist"
	}
	return slug
}

// uniqueSlug appends -2, -3, ... to the base slug until it is free. Runs
// inside the caller's transaction so the claim is atomic with the write.
func uniqueSlug(txn *badger.Txn, base string) (string, error) {
	slug := base
	for suffix := 2; ; suffix++ {
		taken, err := keyExists(txn, prefixPlaylistSlug+slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(suffix)
	}
}

// CreatePlaylist stores a new playlist with a unique slug derived from its
// title.
func (s *Store) CreatePlaylist(p *models.Playlist) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.AllowedUserIDs == nil {
		p.AllowedUserIDs = []string{}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		slug, err := uniqueSlug(txn, Slugify(p.Title))
		if err != nil {
			return err
		}
		p.Slug = slug
		if err := setJSON(txn, prefixPlaylist+p.ID, p); err != nil {
			return err
		}
		return txn.Set([]byte(prefixPlaylistSlug+slug), []byte(p.ID))
	})
}

// GetPlaylist returns a playlist by ID.
func (s *Store) GetPlaylist(id string) (*models.Playlist, error) {
	var p models.Playlist
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixPlaylist+id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublicPlaylist resolves a public playlist by slug first, then by ID.
// Private playlists are invisible through this lookup and return ErrNotFound.
func (s *Store) GetPublicPlaylist(ref string) (*models.Playlist, error) {
	var p models.Playlist
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, prefixPlaylistSlug+ref)
		if err == ErrNotFound {
			id = ref
		} else if err != nil {
			return err
		}
		return getJSON(txn, prefixPlaylist+id, &p)
	})
	if err != nil {
		return nil, err
	}
	if !p.Public {
		return nil, ErrNotFound
	}
	return &p, nil
}

// PlaylistUpdate carries the mutable playlist fields. Nil fields are left
// unchanged.
type PlaylistUpdate struct {
	Title       *string
	Description *string
	Public      *bool
}

// UpdatePlaylist applies a partial update. A title change regenerates the
// slug, releasing the old one.
func (s *Store) UpdatePlaylist(id string, update PlaylistUpdate) (*models.Playlist, error) {
	var p models.Playlist
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, prefixPlaylist+id, &p); err != nil {
			return err
		}

		changed := false
		if update.Title != nil && *update.Title != p.Title {
			p.Title = *update.Title
			oldSlug := p.Slug
			slug, err := uniqueSlug(txn, Slugify(p.Title))
			if err != nil {
				return err
			}
			p.Slug = slug
			if err := txn.Delete([]byte(prefixPlaylistSlug + oldSlug)); err != nil {
				return err
			}
			if err := txn.Set([]byte(prefixPlaylistSlug+slug), []byte(p.ID)); err != nil {
				return err
			}
			changed = true
		}
		if update.Description != nil && *update.Description != p.Description {
			p.Description = *update.Description
			changed = true
		}
		if update.Public != nil && *update.Public != p.Public {
			p.Public = *update.Public
			changed = true
		}
		if !changed {
			return nil
		}

		p.UpdatedAt = time.Now().UTC()
		return setJSON(txn, prefixPlaylist+p.ID, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlaylist removes a playlist, its slug index, and all of its items.
func (s *Store) DeletePlaylist(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var p models.Playlist
		if err := getJSON(txn, prefixPlaylist+id, &p); err != nil {
			return err
		}

		itemKeys, err := collectKeys(txn, prefixItem+id+":")
		if err != nil {
			return err
		}
		for _, key := range itemKeys {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		if err := txn.Delete([]byte(prefixPlaylistSlug + p.Slug)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixPlaylist + id))
	})
}

// ListPlaylistsForUser returns playlists the user owns or collaborates on,
// newest first.
func (s *Store) ListPlaylistsForUser(userID string) ([]models.Playlist, error) {
	out := []models.Playlist{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixPlaylist)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p models.Playlist
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			if p.CanModifyItems(userID) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SetAllowedUsers replaces the playlist's collaborator list.
func (s *Store) SetAllowedUsers(id string, allowed []string) (*models.Playlist, error) {
	var p models.Playlist
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, prefixPlaylist+id, &p); err != nil {
			return err
		}
		p.AllowedUserIDs = dedupe(allowed)
		p.UpdatedAt = time.Now().UTC()
		return setJSON(txn, prefixPlaylist+p.ID, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func collectKeys(txn *badger.Txn, prefix string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys []string
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, string(it.Item().KeyCopy(nil)))
	}
	return keys, nil
}
