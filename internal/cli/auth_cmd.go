// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
)

// accountInfo is the JSON shape of login, register and whoami.
type accountInfo struct {
	Email     string     `json:"email"`
	UserID    int        `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HandleLogin handles "taskchat login [--email E]".
func HandleLogin(ctx context.Context, args Args, env *Env) error {
	return authenticate(ctx, args, env, false)
}

// HandleRegister handles "taskchat register [--email E]".
func HandleRegister(ctx context.Context, args Args, env *Env) error {
	return authenticate(ctx, args, env, true)
}

func authenticate(ctx context.Context, args Args, env *Env, register bool) error {
	p := NewArgParser(args.Raw)
	action := "login"
	if register {
		action = "register"
	}

	email := strings.TrimSpace(p.Flag("email"))
	if email == "" {
		var err error
		if email, err = env.Prompt("Email: "); err != nil {
			return ErrMissingArgument("email", "taskchat "+action+" --email you@example.com")
		}
	}
	password, err := env.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	if register {
		confirm, err := env.ReadPassword("Confirm password: ")
		if err != nil {
			return err
		}
		form := auth.RegisterForm{Email: email, Password: password, Confirm: confirm}
		if err := form.Validate(); err != nil {
			return formError(err)
		}
		email, password = form.Email, form.Password
	} else {
		form := auth.LoginForm{Email: email, Password: password}
		if err := form.Validate(); err != nil {
			return formError(err)
		}
		email, password = form.Email, form.Password
	}

	var resp *api.AuthResponse
	if register {
		resp, err = env.Client.Register(ctx, email, password)
	} else {
		resp, err = env.Client.Login(ctx, email, password)
	}
	if err != nil {
		env.Log.Info("authentication failed", zap.String("action", action), zap.Error(err))
		return authFailure(action, err)
	}

	creds := auth.Credentials{
		Token:   resp.AccessToken,
		Email:   resp.User.Email,
		UserID:  resp.User.ID,
		SavedAt: env.Now().UTC(),
	}
	if creds.Email == "" {
		creds.Email = email
	}
	if err := env.Store.Save(creds); err != nil {
		return err
	}

	if args.JSON {
		return WriteJSON(env.Out, sessionInfo(auth.NewSession(creds)), env.Color)
	}
	if !args.Quiet {
		verb := "Logged in as"
		if register {
			verb = "Account created. Logged in as"
		}
		env.printf("%s %s %s\n", env.style(SuccessStyle, "✓"), verb, creds.Email)
	}
	return nil
}

// authFailure words a rejected login. A 401 here is bad credentials, not
// an expired session, so it must not read like the guard's message.
func authFailure(action string, err error) error {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return &CommandError{Command: action, Action: "request", Reason: apiErr.Detail}
	case errors.Is(err, api.ErrUnauthorized):
		return &CommandError{Command: action, Action: "request", Reason: "invalid email or password"}
	default:
		return err
	}
}

// formError turns validator output into a ValidationError.
func formError(err error) error {
	var ferrs auth.FormErrors
	if errors.As(err, &ferrs) && len(ferrs) > 0 {
		return &ValidationError{Field: strings.ToLower(ferrs[0].Field), Reason: ferrs[0].Message}
	}
	return err
}

// HandleLogout handles "taskchat logout".
func HandleLogout(_ context.Context, args Args, env *Env) error {
	if err := env.Store.Clear(); err != nil {
		return err
	}
	if args.JSON {
		return WriteJSON(env.Out, map[string]bool{"logged_out": true}, env.Color)
	}
	if !args.Quiet {
		env.printf("Logged out.\n")
	}
	return nil
}

// HandleWhoami handles "taskchat whoami". It asks the backend, so a token
// revoked server-side is reported too.
func HandleWhoami(ctx context.Context, args Args, env *Env) error {
	client, session, err := env.AuthedClient()
	if err != nil {
		return err
	}
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}

	info := sessionInfo(session)
	info.Email = user.Email
	info.UserID = user.ID

	if args.JSON {
		return WriteJSON(env.Out, info, env.Color)
	}

	env.printf("%s\n", RenderField("Email", user.Email))
	env.printf("%s\n", RenderField("User ID", fmt.Sprint(user.ID)))
	if !user.CreatedAt.IsZero() {
		env.printf("%s\n", RenderField("Member since", user.CreatedAt.Format("Jan 2, 2006")))
	}
	if info.ExpiresAt != nil {
		left := info.ExpiresAt.Sub(env.Now()).Round(time.Minute)
		env.printf("%s\n", RenderField("Session", "expires in "+left.String()))
	}
	env.printf("%s\n", RenderField("Server", env.Client.BaseURL()))
	return nil
}

func sessionInfo(s *auth.Session) accountInfo {
	info := accountInfo{Email: s.Email(), UserID: s.UserID()}
	if exp, ok := s.Expiry(); ok {
		info.ExpiresAt = &exp
	}
	return info
}
