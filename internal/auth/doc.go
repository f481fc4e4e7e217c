// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth keeps the user's login between runs and decides whether a
// screen or command may run.
//
// # Key Types
//
//   - Store: credentials.json on disk (0600, atomic writes)
//   - Session: the current token; implements api.TokenSource
//   - Watcher: notices logout or login from another terminal
//   - LoginForm, TaskForm: input validation before hitting the backend
//
// # Guard
//
// Require is the single gate for protected screens and commands. It fails
// with ErrNotAuthenticated when there is no token and ErrSessionExpired when
// the token's exp claim has passed. The TUI answers either by showing the
// login screen; the CLI prints a hint to run `taskchat login`.
//
// Token expiry is read from the JWT without verifying its signature: the
// client never holds the server's key, and the backend still rejects forged
// tokens with 401.
package auth
