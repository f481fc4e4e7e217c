// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the typed HTTP client for the taskchat backend.
//
// The backend exposes JSON endpoints under /api for authentication, task
// CRUD and the chat assistant. Every authenticated call carries a bearer
// token obtained from a TokenSource.
//
// # Key Types
//
//   - Client: the backend client (retries, rate limiting, size caps)
//   - TokenSource: supplies the bearer token (implemented by auth.Session)
//   - APIError: a non-2xx response with the backend's detail message
//
// # Errors
//
// APIError matches the sentinel errors with errors.Is, so callers can test
// for ErrUnauthorized, ErrNotFound, ErrRateLimited or ErrInvalidInput and
// still show the backend's detail text.
//
// # Usage
//
//	client := api.NewFromConfig(cfg, session)
//	defer client.Close()
//
//	tasks, err := client.ListTasks(ctx, model.FilterPending)
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // send the user back to login
//	}
package api
