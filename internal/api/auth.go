// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/jeranaias/taskchat-tui/internal/model"
)

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   Credentials{Email: strings.TrimSpace(email), Password: password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges email and password for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   Credentials{Email: strings.TrimSpace(email), Password: password},
		out:    &out,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/auth/me",
		out:    &out,
		auth:   true,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is up. It needs no token.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/health",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
