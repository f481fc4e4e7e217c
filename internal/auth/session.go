// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Error variables for the guard.
var (
	// ErrNotAuthenticated indicates no token is available.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrSessionExpired indicates the token's exp claim has passed.
	ErrSessionExpired = errors.New("session expired")
)

// expirySkew treats tokens as expired slightly early so a request does not
// race the server's clock.
const expirySkew = 30 * time.Second

// Session is an authenticated user's token plus what we know about it.
type Session struct {
	creds     Credentials
	expiresAt time.Time
	now       func() time.Time
}

// NewSession wraps creds. Tokens that are not JWTs, or carry no exp claim,
// never expire locally.
func NewSession(creds Credentials) *Session {
	s := &Session{creds: creds, now: time.Now}
	if exp, err := tokenExpiry(creds.Token); err == nil {
		s.expiresAt = exp
	}
	return s
}

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// Token implements api.TokenSource.
func (s *Session) Token() (string, error) {
	if err := Require(s, s.now()); err != nil {
		return "", err
	}
	return s.creds.Token, nil
}

// Email returns the logged-in address.
func (s *Session) Email() string {
	return s.creds.Email
}

// UserID returns the backend user id, 0 if unknown.
func (s *Session) UserID() int {
	return s.creds.UserID
}

// Credentials returns a copy of the wrapped credentials.
func (s *Session) Credentials() Credentials {
	return s.creds
}

// Expiry returns the token expiry and whether one is known.
func (s *Session) Expiry() (time.Time, bool) {
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Valid reports whether the session is usable at now.
func (s *Session) Valid(now time.Time) bool {
	return Require(s, now) == nil
}

// ExpiresIn returns the time left at now, or -1 if no expiry is known.
func (s *Session) ExpiresIn(now time.Time) time.Duration {
	if s.expiresAt.IsZero() {
		return -1
	}
	if left := s.expiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}
