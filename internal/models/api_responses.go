// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package models

import "time"

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Status   string       `json:"status"`
	Data     interface{}  `json:"data,omitempty"`
	Metadata *APIMetadata `json:"metadata,omitempty"`
	Error    *APIError    `json:"error,omitempty"`
}

// APIMetadata carries response metadata such as timestamps and counts.
type APIMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
	Total     int       `json:"total,omitempty"`
	Page      int       `json:"page,omitempty"`
	PageSize  int       `json:"page_size,omitempty"`
}

// APIError describes a request failure in a machine-readable form.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeUpstreamFailed = "UPSTREAM_FAILED"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// SignupRequest is the body for POST /api/v1/auth/signup.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`

	// Preferences seed the user's taste profile. Optional.
	Preferences *Preferences `json:"preferences" validate:"omitempty"`
}

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        PublicUser `json:"user"`
}

// CreatePlaylistRequest is the body for POST /api/v1/playlists.
type CreatePlaylistRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Public      bool   `json:"public"`
}

// UpdatePlaylistRequest is the body for PATCH /api/v1/playlists/{id}.
// Nil fields are left unchanged.
type UpdatePlaylistRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Public      *bool   `json:"public"`
}

// AddItemRequest is the body for POST /api/v1/playlists/{id}/items.
type AddItemRequest struct {
	MediaType MediaType `json:"media_type" validate:"required,mediatype"`
	MediaID   string    `json:"media_id" validate:"required,min=1,max=200"`
	Title     string    `json:"title" validate:"required,min=1,max=500"`

	// Position inserts the item at a specific index. Nil appends.
	Position *int `json:"position" validate:"omitempty,min=0"`
}

// ReorderItemsRequest is the body for POST /api/v1/playlists/{id}/reorder.
// ItemIDs must be an exact permutation of the playlist's current item IDs.
type ReorderItemsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

// ShareRequest is the body for POST /api/v1/playlists/{id}/share/invite.
type ShareRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=100"`
}
