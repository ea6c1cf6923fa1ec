// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"net/http"
	"testing"

	"github.com/soundwavehq/soundwave/internal/models"
)

func (env *testEnv) createPlaylist(t *testing.T, token string, req models.CreatePlaylistRequest) models.PlaylistWithItems {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/playlists/", token, req)
	wantStatus(t, rec, http.StatusCreated)
	var playlist models.PlaylistWithItems
	decodeEnvelope(t, rec, &playlist)
	return playlist
}

func (env *testEnv) addItem(t *testing.T, token, playlistID string, req models.AddItemRequest) models.PlaylistWithItems {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/playlists/"+playlistID+"/items", token, req)
	wantStatus(t, rec, http.StatusCreated)
	var playlist models.PlaylistWithItems
	decodeEnvelope(t, rec, &playlist)
	return playlist
}

func TestPlaylistCRUD(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "owner@example.com")

	created := env.createPlaylist(t, token, models.CreatePlaylistRequest{
		Title:       "Road Trip!",
		Description: "summer drive",
	})
	if created.Slug != "road-trip" {
		t.Fatalf("slug = %q, want road-trip", created.Slug)
	}
	if created.OwnerID != userID {
		t.Fatalf("owner = %q, want %q", created.OwnerID, userID)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/playlists/", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var listed []models.Playlist
	decodeEnvelope(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	// Renaming regenerates the slug.
	newTitle := "Winter Drive"
	rec = env.do(t, http.MethodPatch, "/api/v1/playlists/"+created.ID+"/", token, models.UpdatePlaylistRequest{Title: &newTitle})
	wantStatus(t, rec, http.StatusOK)
	var updated models.PlaylistWithItems
	decodeEnvelope(t, rec, &updated)
	if updated.Slug != "winter-drive" {
		t.Fatalf("slug after rename = %q, want winter-drive", updated.Slug)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/playlists/"+created.ID+"/", token, nil)
	wantStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/v1/playlists/"+created.ID+"/", token, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestPlaylistItemFlow(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "items@example.com")
	playlist := env.createPlaylist(t, token, models.CreatePlaylistRequest{Title: "Mix"})

	for _, title := range []string{"First", "Second", "Third"} {
		env.addItem(t, token, playlist.ID, models.AddItemRequest{
			MediaType: models.MediaTypeMovie,
			MediaID:   title,
			Title:     title,
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.ID+"/", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var full models.PlaylistWithItems
	decodeEnvelope(t, rec, &full)
	if len(full.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(full.Items))
	}
	for i, item := range full.Items {
		if item.Position != i {
			t.Fatalf("item %d position = %d", i, item.Position)
		}
	}

	// Reverse the order.
	reversed := []string{full.Items[2].ID, full.Items[1].ID, full.Items[0].ID}
	rec = env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/reorder", token, models.ReorderItemsRequest{ItemIDs: reversed})
	wantStatus(t, rec, http.StatusOK)
	decodeEnvelope(t, rec, &full)
	if full.Items[0].Title != "Third" || full.Items[2].Title != "First" {
		t.Fatalf("reorder failed: %+v", full.Items)
	}

	// A reorder that drops an item is rejected.
	rec = env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/reorder", token, models.ReorderItemsRequest{ItemIDs: reversed[:2]})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, models.ErrCodeValidation)

	// Removing the middle item closes the position gap.
	removedID := full.Items[1].ID
	rec = env.do(t, http.MethodDelete, "/api/v1/playlists/"+playlist.ID+"/items/"+removedID, token, nil)
	wantStatus(t, rec, http.StatusOK)
	decodeEnvelope(t, rec, &full)
	if len(full.Items) != 2 || full.Items[0].Position != 0 || full.Items[1].Position != 1 {
		t.Fatalf("items after remove = %+v", full.Items)
	}
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "val@example.com")
	playlist := env.createPlaylist(t, token, models.CreatePlaylistRequest{Title: "Mix"})

	rec := env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/items", token, map[string]string{
		"media_type": "podcast",
		"media_id":   "1",
		"title":      "Nope",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, models.ErrCodeValidation)
}

func TestPlaylistSharing(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, _ := env.signupAndLogin(t, "sharer@example.com")
	guestToken, guestID := env.signupAndLogin(t, "guest@example.com")

	playlist := env.createPlaylist(t, ownerToken, models.CreatePlaylistRequest{Title: "Private Mix"})

	// Private playlists are invisible to other users, not forbidden.
	rec := env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.ID+"/", guestToken, nil)
	wantStatus(t, rec, http.StatusNotFound)

	// Write attempts on a readable-but-not-owned playlist get 403.
	rec = env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/items", guestToken, models.AddItemRequest{
		MediaType: models.MediaTypeMusic,
		MediaID:   "track-1",
		Title:     "Track",
	})
	wantStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/share/invite", ownerToken, models.ShareRequest{UserID: guestID})
	wantStatus(t, rec, http.StatusOK)

	// Collaborators can read and modify items.
	rec = env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.ID+"/", guestToken, nil)
	wantStatus(t, rec, http.StatusOK)
	env.addItem(t, guestToken, playlist.ID, models.AddItemRequest{
		MediaType: models.MediaTypeMusic,
		MediaID:   "track-1",
		Title:     "Track",
	})

	// But not update, delete, or re-share.
	public := true
	rec = env.do(t, http.MethodPatch, "/api/v1/playlists/"+playlist.ID+"/", guestToken, models.UpdatePlaylistRequest{Public: &public})
	wantStatus(t, rec, http.StatusForbidden)
	rec = env.do(t, http.MethodDelete, "/api/v1/playlists/"+playlist.ID+"/", guestToken, nil)
	wantStatus(t, rec, http.StatusForbidden)
	rec = env.do(t, http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/share/invite", guestToken, models.ShareRequest{UserID: "whoever"})
	wantStatus(t, rec, http.StatusForbidden)

	// Revocation closes access again.
	rec = env.do(t, http.MethodDelete, "/api/v1/playlists/"+playlist.ID+"/share/"+guestID, ownerToken, nil)
	wantStatus(t, rec, http.StatusOK)
	rec = env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.ID+"/", guestToken, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestPublicPlaylistLookup(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "public@example.com")

	shared := env.createPlaylist(t, token, models.CreatePlaylistRequest{Title: "Party Set", Public: true})
	private := env.createPlaylist(t, token, models.CreatePlaylistRequest{Title: "Secret Set"})

	// Slug and raw ID both resolve, with no authentication.
	for _, ref := range []string{shared.Slug, shared.ID} {
		rec := env.do(t, http.MethodGet, "/api/v1/playlists/public/"+ref, "", nil)
		wantStatus(t, rec, http.StatusOK)
		var got models.PlaylistWithItems
		decodeEnvelope(t, rec, &got)
		if got.ID != shared.ID {
			t.Fatalf("ref %q resolved to %q", ref, got.ID)
		}
	}

	// Private playlists stay invisible through the public endpoint.
	for _, ref := range []string{private.Slug, private.ID} {
		rec := env.do(t, http.MethodGet, "/api/v1/playlists/public/"+ref, "", nil)
		wantStatus(t, rec, http.StatusNotFound)
	}
}
