// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"net/http"

	"github.com/soundwavehq/soundwave/internal/models"
)

func (h *Handlers) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "query parameter is required", nil)
		return
	}

	result, err := h.discovery.SearchMovies(r.Context(), query, queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, result, len(result))
}

func (h *Handlers) handlePopularMovies(w http.ResponseWriter, r *http.Request) {
	result, err := h.discovery.PopularMovies(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, result, len(result))
}

func (h *Handlers) handleSearchMusic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "query parameter is required", nil)
		return
	}

	result, err := h.discovery.SearchMusic(r.Context(), query, queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, result, len(result))
}

func (h *Handlers) handlePopularMusic(w http.ResponseWriter, r *http.Request) {
	result, err := h.discovery.PopularMusic(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondList(w, http.StatusOK, result, len(result))
}
