// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"net/http"

	"github.com/soundwavehq/soundwave/internal/metrics"
	"github.com/soundwavehq/soundwave/internal/models"
)

func (h *Handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return
	}

	user, err := h.auth.Signup(req)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		respondDomainError(w, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	respondData(w, http.StatusCreated, user.Public())
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		respondDomainError(w, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	respondData(w, http.StatusOK, resp)
}

func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, currentUser(r).Public())
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := h.auth.Logout(token); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
