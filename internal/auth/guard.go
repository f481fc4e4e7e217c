// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/jeranaias/taskchat-tui/internal/api"
)

var _ api.TokenSource = (*Session)(nil)

// Require is the guard for protected operations.
func Require(s *Session, now time.Time) error {
	if s == nil || strings.TrimSpace(s.creds.Token) == "" {
		return ErrNotAuthenticated
	}
	if !s.expiresAt.IsZero() && !now.Add(expirySkew).Before(s.expiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// Resolve finds the active session. A non-empty override token (from
// TASKCHAT_TOKEN) wins over the store. The result has passed Require.
func Resolve(store *Store, override string, now time.Time) (*Session, error) {
	var session *Session
	if token := strings.TrimSpace(override); token != "" {
		session = NewSession(Credentials{Token: token})
	} else {
		creds, err := store.Load()
		if err != nil {
			return nil, err
		}
		session = NewSession(*creds)
	}

	if err := Require(session, now); err != nil {
		return nil, err
	}
	return session, nil
}

// IsAuthError reports whether err means the user has to log in again,
// either from the local guard or a 401 from the backend.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, api.ErrUnauthorized)
}

// GuardMessage turns a guard failure into a user-facing hint.
func GuardMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrNotAuthenticated):
		return "You are not logged in."
	case errors.Is(err, api.ErrUnauthorized):
		return "The server rejected your session. Please log in again."
	case err != nil:
		return err.Error()
	}
	return ""
}
