// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"net/http"
)

func (h *Handlers) handleActivityFeed(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.cfg.API.DefaultPageSize)
	if limit < 1 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	events, err := h.activity.RecentForUser(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, events, len(events))
}

func (h *Handlers) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	items, fallbackUsed, err := h.engine.Recommend(currentUser(r).ID, queryInt(r, "limit", 10))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"items":         items,
		"fallback_used": fallbackUsed,
	})
}
