// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

package auth

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/soundwavehq/soundwave/internal/config"
	"github.com/soundwavehq/soundwave/internal/logging"
	"github.com/soundwavehq/soundwave/internal/models"
	"github.com/soundwavehq/soundwave/internal/store"
)

// ErrInvalidCredentials is returned when login email or password is wrong.
// Callers must not distinguish the two cases in responses.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service implements signup, login, logout, and bearer-token authentication.
type Service struct {
	store      *store.Store
	jwt        *JWTManager
	bcryptCost int
	logger     zerolog.Logger
}

// NewService wires the auth service to the document store.
func NewService(st *store.Store, cfg config.SecurityConfig) *Service {
	return &Service{
		store:      st,
		jwt:        NewJWTManager(cfg.JWTSecret, cfg.SessionTimeout),
		bcryptCost: cfg.BcryptCost,
		logger:     logging.With().Str("component", "auth").Logger(),
	}
}

// Signup registers a new account. Returns store.ErrEmailTaken when the email
// is already registered.
func (s *Service) Signup(req models.SignupRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues an access token backed by a
// server-side record.
func (s *Service) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.store.GetUserByEmail(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		// Burn comparable time so unknown emails are not distinguishable
		// from wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGZLcjQojNRNBzLwfXm2oCcNys3sdaG6"), []byte(req.Password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	rec := &models.TokenRecord{
		Token:     token,
		UserID:    user.ID,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := s.store.PutToken(rec); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Time("expires_at", expiresAt).Msg("User logged in")
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user.Public(),
	}, nil
}

// Authenticate resolves a bearer token to its user. The JWT signature, the
// server-side record, and the record expiry must all hold.
func (s *Service) Authenticate(token string) (*models.User, error) {
	userID, err := s.jwt.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	rec, err := s.store.GetToken(token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID || rec.Expired(time.Now().UTC()) {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUser(userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// Logout revokes the token's server-side record.
func (s *Service) Logout(token string) error {
	return s.store.DeleteToken(token)
}
