// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/components"
)

const (
	formLogin    = "login"
	formRegister = "register"
)

func (m *Model) newAuthForm(register bool) *components.Form {
	fields := []components.FieldSpec{
		{Name: "email", Label: "Email", Placeholder: "you@example.com", CharLimit: 254},
		{Name: "password", Label: "Password", Placeholder: "At least 8 characters", Password: true, CharLimit: 72},
	}
	f := components.NewForm(m.theme, formLogin, "Welcome back", "Sign In", fields...)
	if register {
		fields = append(fields, components.FieldSpec{
			Name: "confirm", Label: "Confirm password", Password: true, CharLimit: 72,
		})
		f = components.NewForm(m.theme, formRegister, "Create your account", "Create Account", fields...)
	}
	f.SetWidth(min(m.theme.ContentWidth(), 60))
	return f
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.SwitchAuth) && !m.authForm.Busy() {
		register := m.screen == screenLogin
		email := m.authForm.Values()["email"]
		m.authForm = m.newAuthForm(register)
		m.authForm.SetValue("email", email)
		if register {
			m.screen = screenRegister
		} else {
			m.screen = screenLogin
		}
		return m, m.authForm.Init()
	}

	switch msg := msg.(type) {
	case components.FormSubmitMsg:
		return m.submitAuth(msg)
	case components.FormCancelMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.authForm, cmd = m.authForm.Update(msg)
	return m, cmd
}

// submitAuth validates the form locally before calling the backend.
func (m Model) submitAuth(msg components.FormSubmitMsg) (tea.Model, tea.Cmd) {
	v := msg.Values
	register := msg.FormID == formRegister

	var err error
	var email, password string
	if register {
		form := auth.RegisterForm{Email: v["email"], Password: v["password"], Confirm: v["confirm"]}
		err = form.Validate()
		email, password = form.Email, form.Password
	} else {
		form := auth.LoginForm{Email: v["email"], Password: v["password"]}
		err = form.Validate()
		email, password = form.Email, form.Password
	}
	if err != nil {
		return m, m.authForm.SetErrors(formErrorMap(err))
	}

	m.authForm.SetErrors(nil)
	m.authForm.SetBusy(true)
	return m, authenticateCmd(m.ctx, m.client, m.store, email, password, register)
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if m.authForm != nil {
		m.authForm.SetBusy(false)
	}
	if msg.err != nil {
		m.log.Info("authentication failed", zap.Bool("register", msg.register), zap.Error(msg.err))
		if m.authForm != nil {
			m.authForm.SetError(authFailureMessage(msg.err, msg.register))
		}
		return m, nil
	}

	m.setSession(msg.session)
	m.authForm = nil
	m.screen = screenDashboard
	m.loadingTasks = true
	m.toasts.AddSuccess("Signed in as " + msg.session.Email())
	return m, loadTasksCmd(m.ctx, m.authed)
}

// authFailureMessage words a login or registration failure.
func authFailureMessage(err error, register bool) string {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case !register && errors.Is(err, api.ErrUnauthorized):
		return "Invalid email or password"
	default:
		return api.UserMessage(err)
	}
}

// logout forgets the session and returns to the login screen.
func (m *Model) logout(reason string) tea.Cmd {
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.log.Warn("failed to clear credentials", zap.Error(err))
		}
	}
	m.session = nil
	m.authed = nil
	m.sending = false
	m.thinking.Stop()
	m.input.SetDisabled(false)
	m.tasks.SetTasks(nil)
	m.taskForm = nil
	m.confirm = nil
	m.conv = model.NewConversation()
	m.layoutChat()
	m.screen = screenLogin
	m.authForm = m.newAuthForm(false)
	if reason != "" {
		m.authForm.SetError(reason)
	}
	return m.authForm.Init()
}

// handleCredentialsChanged follows logins and logouts made by another
// taskchat process sharing the credentials file.
func (m Model) handleCredentialsChanged(msg credentialsChangedMsg) (tea.Model, tea.Cmd) {
	next := waitForCredentialsCmd(m.ctx, m.watcher)

	switch msg.change {
	case auth.CredentialsRemoved:
		if m.session == nil {
			return m, next
		}
		return m, tea.Batch(next, m.logout("You were logged out from another terminal."))

	case auth.CredentialsWritten:
		if m.store == nil {
			return m, next
		}
		creds, err := m.store.Load()
		if err != nil {
			return m, next
		}
		if m.session != nil && m.session.Credentials().Token == creds.Token {
			return m, next
		}
		s := auth.NewSession(*creds)
		if auth.Require(s, m.now()) != nil {
			return m, next
		}
		m.setSession(s)
		m.authForm = nil
		if m.screen == screenLogin || m.screen == screenRegister {
			m.screen = screenDashboard
		}
		m.loadingTasks = true
		m.toasts.AddInfo("Signed in as " + s.Email())
		return m, tea.Batch(next, loadTasksCmd(m.ctx, m.authed))
	}
	return m, next
}

func (m Model) authView() string {
	hint := "New here? Press Ctrl+R to create an account."
	if m.screen == screenRegister {
		hint = "Already have an account? Press Ctrl+R to sign in."
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.authForm.View(),
		"",
		m.theme.Hint.Render(hint),
		m.theme.Hint.Render("Server: "+m.client.BaseURL()),
	)
	return m.overlay(body)
}

// formErrorMap keys validation messages by lower-cased field name.
func formErrorMap(err error) map[string]string {
	var ferrs auth.FormErrors
	if !errors.As(err, &ferrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ferrs))
	for _, fe := range ferrs {
		name := strings.ToLower(fe.Field)
		if _, seen := out[name]; !seen {
			out[name] = fe.Message
		}
	}
	return out
}
