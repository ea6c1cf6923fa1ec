// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundwavehq/soundwave/internal/models"
	"github.com/soundwavehq/soundwave/internal/store"
)

// loadPlaylist fetches the playlist and enforces the access predicate. On
// failure the response is already written and nil is returned. Inaccessible
// playlists surface as 404 for readers and 403 for writers, so reads do not
// leak which private playlists exist.
func (h *Handlers) loadPlaylist(w http.ResponseWriter, r *http.Request, check func(*models.Playlist, string) bool, deniedStatus int) *models.Playlist {
	playlist, err := h.store.GetPlaylist(chi.URLParam(r, "playlistID"))
	if err != nil {
		respondDomainError(w, err)
		return nil
	}

	user := currentUser(r)
	if !check(playlist, user.ID) {
		if deniedStatus == http.StatusNotFound {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "resource not found", nil)
		} else {
			respondError(w, http.StatusForbidden, models.ErrCodeForbidden, "access denied", nil)
		}
		return nil
	}
	return playlist
}

func canRead(p *models.Playlist, userID string) bool        { return p.CanRead(userID) }
func canModifyItems(p *models.Playlist, userID string) bool { return p.CanModifyItems(userID) }
func isOwner(p *models.Playlist, userID string) bool        { return p.IsOwner(userID) }

func (h *Handlers) respondPlaylist(w http.ResponseWriter, status int, playlistID string) {
	full, err := h.store.GetPlaylistWithItems(playlistID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, status, full)
}

func (h *Handlers) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.store.ListPlaylistsForUser(currentUser(r).ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, playlists, len(playlists))
}

func (h *Handlers) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlaylistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user := currentUser(r)
	playlist := &models.Playlist{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		Public:      req.Public,
	}
	if err := h.store.CreatePlaylist(playlist); err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     user.ID,
		EventType:  models.EventPlaylistCreated,
		PlaylistID: playlist.ID,
	})
	h.respondPlaylist(w, http.StatusCreated, playlist.ID)
}

func (h *Handlers) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, canRead, http.StatusNotFound)
	if playlist == nil {
		return
	}
	h.respondPlaylist(w, http.StatusOK, playlist.ID)
}

func (h *Handlers) handlePublicPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.store.GetPublicPlaylist(chi.URLParam(r, "ref"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondPlaylist(w, http.StatusOK, playlist.ID)
}

func (h *Handlers) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, isOwner, http.StatusForbidden)
	if playlist == nil {
		return
	}

	var req models.UpdatePlaylistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.store.UpdatePlaylist(playlist.ID, store.PlaylistUpdate{
		Title:       req.Title,
		Description: req.Description,
		Public:      req.Public,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventPlaylistUpdated,
		PlaylistID: updated.ID,
	})
	h.respondPlaylist(w, http.StatusOK, updated.ID)
}

func (h *Handlers) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, isOwner, http.StatusForbidden)
	if playlist == nil {
		return
	}

	if err := h.store.DeletePlaylist(playlist.ID); err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventPlaylistDeleted,
		PlaylistID: playlist.ID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleAddItem(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, canModifyItems, http.StatusForbidden)
	if playlist == nil {
		return
	}

	var req models.AddItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user := currentUser(r)
	item := &models.PlaylistItem{
		MediaType: req.MediaType,
		MediaID:   req.MediaID,
		Title:     req.Title,
		AddedBy:   user.ID,
	}
	if err := h.store.AddItem(playlist.ID, item, req.Position); err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     user.ID,
		EventType:  models.EventItemAdded,
		PlaylistID: playlist.ID,
		MediaType:  string(req.MediaType),
		MediaID:    req.MediaID,
	})
	h.respondPlaylist(w, http.StatusCreated, playlist.ID)
}

func (h *Handlers) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, canModifyItems, http.StatusForbidden)
	if playlist == nil {
		return
	}

	removed, err := h.store.RemoveItem(playlist.ID, chi.URLParam(r, "itemID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventItemRemoved,
		PlaylistID: playlist.ID,
		MediaType:  string(removed.MediaType),
		MediaID:    removed.MediaID,
	})
	h.respondPlaylist(w, http.StatusOK, playlist.ID)
}

func (h *Handlers) handleReorderItems(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, canModifyItems, http.StatusForbidden)
	if playlist == nil {
		return
	}

	var req models.ReorderItemsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.store.ReorderItems(playlist.ID, req.ItemIDs); err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventItemsReordered,
		PlaylistID: playlist.ID,
	})
	h.respondPlaylist(w, http.StatusOK, playlist.ID)
}

func (h *Handlers) handleShareInvite(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, isOwner, http.StatusForbidden)
	if playlist == nil {
		return
	}

	var req models.ShareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	allowed := append(append([]string{}, playlist.AllowedUserIDs...), req.UserID)
	updated, err := h.store.SetAllowedUsers(playlist.ID, allowed)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventShareInvited,
		PlaylistID: updated.ID,
	})
	h.respondPlaylist(w, http.StatusOK, updated.ID)
}

func (h *Handlers) handleShareRevoke(w http.ResponseWriter, r *http.Request) {
	playlist := h.loadPlaylist(w, r, isOwner, http.StatusForbidden)
	if playlist == nil {
		return
	}

	revoked := chi.URLParam(r, "userID")
	allowed := make([]string, 0, len(playlist.AllowedUserIDs))
	for _, id := range playlist.AllowedUserIDs {
		if id != revoked {
			allowed = append(allowed, id)
		}
	}
	updated, err := h.store.SetAllowedUsers(playlist.ID, allowed)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.recorder.Record(models.ActivityEvent{
		UserID:     currentUser(r).ID,
		EventType:  models.EventShareRevoked,
		PlaylistID: updated.ID,
	})
	h.respondPlaylist(w, http.StatusOK, updated.ID)
}
