// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package store

import (
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/soundwavehq/soundwave/internal/models"
)

// loadItems returns a playlist's items sorted by position, inside the given
// transaction.
func loadItems(txn *badger.Txn, playlistID string) ([]models.PlaylistItem, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixItem + playlistID + ":")
	it := txn.NewIterator(opts)
	defer it.Close()

	items := []models.PlaylistItem{}
	for it.Rewind(); it.Valid(); it.Next() {
		var item models.PlaylistItem
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		}); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func itemKey(playlistID, itemID string) []byte {
	return []byte(prefixItem + playlistID + ":" + itemID)
}

// ListItems returns the playlist's items sorted by position.
func (s *Store) ListItems(playlistID string) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		items, err = loadItems(txn, playlistID)
		return err
	})
	return items, err
}

// GetPlaylistWithItems returns a playlist bundled with its sorted items.
func (s *Store) GetPlaylistWithItems(id string) (*models.PlaylistWithItems, error) {
	var out models.PlaylistWithItems
	err := s.db.View(func(txn *badger.Txn) error {
		if err := getJSON(txn, prefixPlaylist+id, &out.Playlist); err != nil {
			return err
		}
		items, err := loadItems(txn, id)
		if err != nil {
			return err
		}
		out.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem inserts an item into a playlist. A nil position appends; otherwise
// items at or after the target position shift up by one. Positions stay dense
// from 0.
func (s *Store) AddItem(playlistID string, item *models.PlaylistItem, position *int) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.PlaylistID = playlistID
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var p models.Playlist
		if err := getJSON(txn, prefixPlaylist+playlistID, &p); err != nil {
			return err
		}
		items, err := loadItems(txn, playlistID)
		if err != nil {
			return err
		}

		if position == nil {
			item.Position = len(items)
		} else {
			pos := *position
			if pos < 0 {
				pos = 0
			}
			if pos > len(items) {
				pos = len(items)
			}
			item.Position = pos
			for i := range items {
				if items[i].Position >= pos {
					items[i].Position++
					if err := setJSON(txn, string(itemKey(playlistID, items[i].ID)), &items[i]); err != nil {
						return err
					}
				}
			}
		}

		if err := setJSON(txn, string(itemKey(playlistID, item.ID)), item); err != nil {
			return err
		}
		return touchPlaylist(txn, &p)
	})
}

// RemoveItem deletes an item and shifts later items down by one.
func (s *Store) RemoveItem(playlistID, itemID string) (*models.PlaylistItem, error) {
	var removed models.PlaylistItem
	err := s.db.Update(func(txn *badger.Txn) error {
		var p models.Playlist
		if err := getJSON(txn, prefixPlaylist+playlistID, &p); err != nil {
			return err
		}
		if err := getJSON(txn, string(itemKey(playlistID, itemID)), &removed); err != nil {
			return err
		}
		if err := txn.Delete(itemKey(playlistID, itemID)); err != nil {
			return err
		}

		items, err := loadItems(txn, playlistID)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].Position > removed.Position {
				items[i].Position--
				if err := setJSON(txn, string(itemKey(playlistID, items[i].ID)), &items[i]); err != nil {
					return err
				}
			}
		}
		return touchPlaylist(txn, &p)
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// ReorderItems assigns positions from the given ID order. The order must be
// an exact permutation of the playlist's current item IDs or ErrBadReorder is
// returned and nothing changes.
func (s *Store) ReorderItems(playlistID string, itemIDs []string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var p models.Playlist
		if err := getJSON(txn, prefixPlaylist+playlistID, &p); err != nil {
			return err
		}
		items, err := loadItems(txn, playlistID)
		if err != nil {
			return err
		}

		if len(itemIDs) != len(items) {
			return ErrBadReorder
		}
		wanted := make(map[string]int, len(itemIDs))
		for idx, id := range itemIDs {
			if _, dup := wanted[id]; dup {
				return ErrBadReorder
			}
			wanted[id] = idx
		}

		for i := range items {
			pos, ok := wanted[items[i].ID]
			if !ok {
				return ErrBadReorder
			}
			if items[i].Position != pos {
				items[i].Position = pos
				if err := setJSON(txn, string(itemKey(playlistID, items[i].ID)), &items[i]); err != nil {
					return err
				}
			}
		}
		return touchPlaylist(txn, &p)
	})
}

func touchPlaylist(txn *badger.Txn, p *models.Playlist) error {
	p.UpdatedAt = time.Now().UTC()
	return setJSON(txn, prefixPlaylist+p.ID, p)
}
