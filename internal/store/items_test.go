// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package store

import (
	"errors"
	"strconv"
	"testing"

	"github.com/soundwavehq/soundwave/internal/models"
)

func seedPlaylist(t *testing.T, s *Store, n int) (*models.Playlist, []models.PlaylistItem) {
	t.Helper()
	p := &models.Playlist{OwnerID: "u1", Title: "Seed"}
	if err := s.CreatePlaylist(p); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		item := &models.PlaylistItem{
			MediaType: models.MediaTypeMovie,
			MediaID:   strconv.Itoa(100 + i),
			Title:     "Movie " + strconv.Itoa(i),
			AddedBy:   "u1",
		}
		if err := s.AddItem(p.ID, item, nil); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.ListItems(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	return p, items
}

func assertPositionsDense(t *testing.T, items []models.PlaylistItem) {
	t.Helper()
	for i, item := range items {
		if item.Position != i {
			t.Errorf("position %d holds item with position %d", i, item.Position)
		}
	}
}

func TestAddItem_AppendAssignsNextPosition(t *testing.T) {
	s := newTestStore(t)
	_, items := seedPlaylist(t, s, 3)

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	assertPositionsDense(t, items)
}

func TestAddItem_InsertShiftsLaterItems(t *testing.T) {
	s := newTestStore(t)
	p, before := seedPlaylist(t, s, 3)

	pos := 1
	inserted := &models.PlaylistItem{MediaType: models.MediaTypeMusic, MediaID: "track-1", Title: "Song", AddedBy: "u1"}
	if err := s.AddItem(p.ID, inserted, &pos); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	after, _ := s.ListItems(p.ID)
	if len(after) != 4 {
		t.Fatalf("expected 4 items, got %d", len(after))
	}
	assertPositionsDense(t, after)
	if after[1].ID != inserted.ID {
		t.Errorf("inserted item not at position 1: %+v", after[1])
	}
	if after[0].ID != before[0].ID || after[2].ID != before[1].ID || after[3].ID != before[2].ID {
		t.Error("insert did not preserve relative order of existing items")
	}
}

func TestAddItem_PositionClamped(t *testing.T) {
	s := newTestStore(t)
	p, _ := seedPlaylist(t, s, 2)

	big := 99
	tail := &models.PlaylistItem{MediaType: models.MediaTypeMovie, MediaID: "x", Title: "Tail", AddedBy: "u1"}
	if err := s.AddItem(p.ID, tail, &big); err != nil {
		t.Fatal(err)
	}
	neg := -5
	head := &models.PlaylistItem{MediaType: models.MediaTypeMovie, MediaID: "y", Title: "Head", AddedBy: "u1"}
	if err := s.AddItem(p.ID, head, &neg); err != nil {
		t.Fatal(err)
	}

	items, _ := s.ListItems(p.ID)
	assertPositionsDense(t, items)
	if items[0].ID != head.ID {
		t.Error("negative position should clamp to 0")
	}
	if items[len(items)-1].ID != tail.ID {
		t.Error("oversized position should clamp to append")
	}
}

func TestRemoveItem_ShiftsDown(t *testing.T) {
	s := newTestStore(t)
	p, items := seedPlaylist(t, s, 4)

	removed, err := s.RemoveItem(p.ID, items[1].ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if removed.Position != 1 {
		t.Errorf("expected removed position 1, got %d", removed.Position)
	}

	after, _ := s.ListItems(p.ID)
	if len(after) != 3 {
		t.Fatalf("expected 3 items, got %d", len(after))
	}
	assertPositionsDense(t, after)
	want := []string{items[0].ID, items[2].ID, items[3].ID}
	for i, id := range want {
		if after[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, after[i].ID, id)
		}
	}
}

func TestRemoveItem_UnknownItem(t *testing.T) {
	s := newTestStore(t)
	p, _ := seedPlaylist(t, s, 1)

	if _, err := s.RemoveItem(p.ID, "no-such-item"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReorderItems_Permutation(t *testing.T) {
	s := newTestStore(t)
	p, items := seedPlaylist(t, s, 3)

	order := []string{items[2].ID, items[0].ID, items[1].ID}
	if err := s.ReorderItems(p.ID, order); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	after, _ := s.ListItems(p.ID)
	assertPositionsDense(t, after)
	for i, id := range order {
		if after[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, after[i].ID, id)
		}
	}
}

func TestReorderItems_RejectsBadOrders(t *testing.T) {
	s := newTestStore(t)
	p, items := seedPlaylist(t, s, 3)

	cases := [][]string{
		{items[0].ID, items[1].ID},                            // missing item
		{items[0].ID, items[1].ID, items[1].ID},               // duplicate
		{items[0].ID, items[1].ID, "stranger"},                // unknown ID
		{items[0].ID, items[1].ID, items[2].ID, items[0].ID},  // too long
	}
	for i, order := range cases {
		if err := s.ReorderItems(p.ID, order); !errors.Is(err, ErrBadReorder) {
			t.Errorf("case %d: expected ErrBadReorder, got %v", i, err)
		}
	}

	// A rejected reorder leaves positions untouched.
	after, _ := s.ListItems(p.ID)
	for i, item := range after {
		if item.ID != items[i].ID {
			t.Error("failed reorder must not change item order")
		}
	}
}
