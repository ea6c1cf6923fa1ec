// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package models defines the domain types shared across the store, API, and
// recommendation layers.
package models

import "time"

// MediaType identifies what a playlist item refers to.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeMusic MediaType = "music"
)

// Valid reports whether the media type is one of the known values.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeMusic
}

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash as stored. User is a storage document;
	// API responses carry PublicUser, which never includes it.
	PasswordHash string `json:"password_hash"`

	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Preferences are taste hints collected at signup.
type Preferences struct {
	Genres  []string `json:"genres"`
	Artists []string `json:"artists"`
}

// PublicUser is the representation of a user safe to return to clients.
type PublicUser struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Public strips credential fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
	}
}

// Playlist is an ordered collection of media items owned by a user.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Public      bool      `json:"public"`

	// AllowedUserIDs lists collaborators invited via sharing. Collaborators
	// may read and modify items but not update, delete, or re-share the
	// playlist itself.
	AllowedUserIDs []string `json:"allowed_user_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanRead reports whether the user may view the playlist.
func (p *Playlist) CanRead(userID string) bool {
	return p.Public || p.OwnerID == userID || p.allows(userID)
}

// CanModifyItems reports whether the user may add, remove, or reorder items.
func (p *Playlist) CanModifyItems(userID string) bool {
	return p.OwnerID == userID || p.allows(userID)
}

// IsOwner reports whether the user owns the playlist. Updating, deleting, and
// sharing require ownership.
func (p *Playlist) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

func (p *Playlist) allows(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range p.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PlaylistItem is one entry in a playlist. Positions are dense and contiguous
// from 0 within a playlist.
type PlaylistItem struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	MediaType  MediaType `json:"media_type"`

	// MediaID is the provider-scoped identifier, e.g. a TMDb movie ID or a
	// Spotify track ID.
	MediaID string `json:"media_id"`

	Title    string `json:"title"`
	Position int    `json:"position"`

	AddedBy string    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// PlaylistWithItems bundles a playlist with its items sorted by position.
type PlaylistWithItems struct {
	Playlist
	Items []PlaylistItem `json:"items"`
}

// TokenRecord is a server-side record of an issued access token. Deleting the
// record revokes the token regardless of its JWT expiry.
type TokenRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at the given time.
func (t *TokenRecord) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ActivityEvent records one user action for the activity feed and the
// recommendation pipeline.
type ActivityEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EventType  string    `json:"event_type"`
	PlaylistID string    `json:"playlist_id,omitempty"`
	MediaType  string    `json:"media_type,omitempty"`
	MediaID    string    `json:"media_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Activity event types emitted by playlist and sharing mutations.
const (
	EventPlaylistCreated = "playlist_created"
	EventPlaylistUpdated = "playlist_updated"
	EventPlaylistDeleted = "playlist_deleted"
	EventItemAdded       = "item_added"
	EventItemRemoved     = "item_removed"
	EventItemsReordered  = "items_reordered"
	EventShareInvited    = "share_invited"
	EventShareRevoked    = "share_revoked"
	EventLike            = "like"
)

// MovieSummary is the normalized TMDb result shape.
type MovieSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Rating      float64 `json:"rating"`
	Popularity  float64 `json:"popularity"`
}

// MusicSummary is the normalized Spotify result shape.
type MusicSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ImageURL   string   `json:"image_url,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	Popularity int      `json:"popularity"`
}

// Interaction is one weighted user-item signal fed to the recommender.
type Interaction struct {
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	Weight     float64   `json:"weight"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recommendation is one scored item returned by the engine.
type Recommendation struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}
