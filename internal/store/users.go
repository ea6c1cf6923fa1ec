// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package store

import (
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/soundwavehq/soundwave/internal/models"
)

// CreateUser stores a new user and its email index. The email is normalized
// to lower case before indexing. Returns ErrEmailTaken when the address is
// already registered.
func (s *Store) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = normalizeEmail(user.Email)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	emailKey := prefixUserEmail + user.Email
	return s.db.Update(func(txn *badger.Txn) error {
		taken, err := keyExists(txn, emailKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if err := setJSON(txn, prefixUser+user.ID, user); err != nil {
			return err
		}
		return txn.Set([]byte(emailKey), []byte(user.ID))
	})
}

// GetUser returns a user by ID.
func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixUser+id, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail resolves the email index and returns the user.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, prefixUserEmail+normalizeEmail(email))
		if err != nil {
			return err
		}
		return getJSON(txn, prefixUser+id, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PutToken stores a server-side token record.
func (s *Store) PutToken(rec *models.TokenRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefixToken+rec.Token, rec)
	})
}

// GetToken returns the record for a token, or ErrNotFound when the token was
// never issued or has been revoked.
func (s *Store) GetToken(token string) (*models.TokenRecord, error) {
	var rec models.TokenRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixToken+token, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteToken revokes a token by removing its record. Deleting an unknown
// token is not an error.
func (s *Store) DeleteToken(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixToken + token))
	})
}

// CleanupExpiredTokens removes token records past their expiry and returns
// the number removed.
func (s *Store) CleanupExpiredTokens(now time.Time) (int, error) {
	var expired []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixToken)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec models.TokenRecord
			key := string(it.Item().Key())
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				s.logger.Warn().Str("key", key).Err(err).Msg("Skipping unreadable token record")
				continue
			}
			if rec.Expired(now) {
				expired = append(expired, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range expired {
		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		}); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
