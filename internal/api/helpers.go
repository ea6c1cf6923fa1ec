// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/soundwavehq/soundwave/internal/auth"
	"github.com/soundwavehq/soundwave/internal/discovery"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/models"
	"github.com/soundwavehq/soundwave/internal/recommend"
	"github.com/soundwavehq/soundwave/internal/store"
	"github.com/soundwavehq/soundwave/internal/validation"
)

// sanitizeLogValue replaces control characters so request-derived strings
// cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a success or error envelope with an FNV-1a ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: &models.APIMetadata{Timestamp: time.Now().UTC()},
	})
}

func respondList(w http.ResponseWriter, status int, data interface{}, count int) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: &models.APIMetadata{Timestamp: time.Now().UTC(), Count: count},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: &models.APIMetadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// decodeAndValidate parses the JSON body into v and validates it. On failure
// it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "malformed JSON body", err)
		return false
	}
	if err := validation.ValidateStruct(v); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			apiErr := verr.ToAPIError()
			respondJSON(w, http.StatusBadRequest, &models.APIResponse{
				Status:   "error",
				Metadata: &models.APIMetadata{Timestamp: time.Now().UTC()},
				Error:    apiErr,
			})
			return false
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "validation failed", err)
		return false
	}
	return true
}

// respondDomainError maps service-layer errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "resource not found", nil)
	case errors.Is(err, store.ErrEmailTaken):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "email already registered", nil)
	case errors.Is(err, store.ErrBadReorder):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "new order must include all items exactly once", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid email or password", nil)
	case errors.Is(err, discovery.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "discovery provider not configured", nil)
	case errors.Is(err, discovery.ErrUpstream):
		respondError(w, http.StatusBadGateway, models.ErrCodeUpstreamFailed, "upstream provider error", err)
	case errors.Is(err, recommend.ErrNotTrained):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "recommendations not ready", nil)
	case errors.Is(err, recommend.ErrNoRecommendations):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no recommendations available", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error", err)
	}
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
