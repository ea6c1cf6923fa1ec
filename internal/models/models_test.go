// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestUser_PublicOmitsPasswordHash(t *testing.T) {
	u := User{
		ID:           "u1",
		Email:        "a@example.com",
		DisplayName:  "A",
		PasswordHash: "$2a$10$secret",
		Preferences:  Preferences{Genres: []string{"jazz"}},
	}

	data, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if containsSubstring(string(data), "secret") || containsSubstring(string(data), "password") {
		t.Errorf("public user leaked password hash: %s", data)
	}

	pub := u.Public()
	if pub.ID != "u1" || pub.Email != "a@example.com" || len(pub.Preferences.Genres) != 1 {
		t.Errorf("unexpected public user: %+v", pub)
	}
}

func TestUser_StorageKeepsPasswordHash(t *testing.T) {
	u := User{ID: "u1", PasswordHash: "$2a$10$secret"}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back User
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.PasswordHash != u.PasswordHash {
		t.Error("password hash lost in storage round trip")
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestPlaylist_AccessPredicates(t *testing.T) {
	p := Playlist{OwnerID: "owner", AllowedUserIDs: []string{"collab"}}

	if !p.CanRead("owner") || !p.CanModifyItems("owner") || !p.IsOwner("owner") {
		t.Error("owner should have full access")
	}
	if !p.CanRead("collab") || !p.CanModifyItems("collab") {
		t.Error("collaborator should read and modify items")
	}
	if p.IsOwner("collab") {
		t.Error("collaborator must not be treated as owner")
	}
	if p.CanRead("stranger") || p.CanModifyItems("stranger") {
		t.Error("stranger should have no access to private playlist")
	}

	p.Public = true
	if !p.CanRead("stranger") {
		t.Error("public playlist should be readable by anyone")
	}
	if p.CanModifyItems("stranger") {
		t.Error("public visibility must not grant modify access")
	}
	if !p.CanRead("") {
		t.Error("public playlist should be readable anonymously")
	}
	if p.allows("") {
		t.Error("empty user ID must never match the allow list")
	}
}

func TestMediaType_Valid(t *testing.T) {
	if !MediaTypeMovie.Valid() || !MediaTypeMusic.Valid() {
		t.Error("known media types should be valid")
	}
	if MediaType("podcast").Valid() {
		t.Error("unknown media type should be invalid")
	}
}

func TestTokenRecord_Expired(t *testing.T) {
	now := time.Now()
	rec := TokenRecord{ExpiresAt: now.Add(time.Minute)}
	if rec.Expired(now) {
		t.Error("token should not be expired before its expiry")
	}
	if !rec.Expired(now.Add(2 * time.Minute)) {
		t.Error("token should be expired after its expiry")
	}
}
