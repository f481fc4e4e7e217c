// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines every binding of the app. Screens pick the subset that
// applies to them for the help line.
type KeyMap struct {
	// Global
	Quit key.Binding
	Help key.Binding

	// Auth screens
	SwitchAuth key.Binding

	// Dashboard
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Toggle  key.Binding
	Filter  key.Binding
	Refresh key.Binding
	Chat    key.Binding
	Logout  key.Binding

	// Chat
	Back       key.Binding
	NewChat    key.Binding
	Suggest    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Send       key.Binding
	Newline    key.Binding
	Paste      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		SwitchAuth: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "login/register"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "done/undo"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Chat: key.NewBinding(
			key.WithKeys("c", "tab"),
			key.WithHelp("c", "chat"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "tasks"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "suggestion"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "new line"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("C-v", "paste"),
		),
	}
}

// =============================================================================
// PER-SCREEN HELP
// =============================================================================

// screenHelp adapts a binding set to help.KeyMap.
type screenHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h screenHelp) ShortHelp() []key.Binding  { return h.short }
func (h screenHelp) FullHelp() [][]key.Binding { return h.full }

var _ help.KeyMap = screenHelp{}

// helpFor returns the bindings shown on a screen.
func (k KeyMap) helpFor(s screen) screenHelp {
	switch s {
	case screenDashboard:
		return screenHelp{
			short: []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Chat, k.Help},
			full: [][]key.Binding{
				{k.Up, k.Down, k.Top, k.Bottom},
				{k.Add, k.Edit, k.Delete, k.Toggle},
				{k.Filter, k.Refresh, k.Chat, k.Logout, k.Quit},
			},
		}
	case screenChat:
		return screenHelp{
			short: []key.Binding{k.Send, k.Newline, k.Back, k.NewChat},
			full: [][]key.Binding{
				{k.Send, k.Newline, k.Paste, k.Suggest},
				{k.ScrollUp, k.ScrollDown},
				{k.Back, k.NewChat},
			},
		}
	default:
		return screenHelp{
			short: []key.Binding{k.SwitchAuth},
			full:  [][]key.Binding{{k.SwitchAuth}},
		}
	}
}
