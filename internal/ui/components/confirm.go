// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// ConfirmMsg reports the answer to a ConfirmDialog.
type ConfirmMsg struct {
	ID        string
	Confirmed bool
}

// ConfirmDialog asks a yes/no question. y or Enter confirms; n or Esc
// cancels.
type ConfirmDialog struct {
	ID      string
	Title   string
	Message string
	Confirm string
	Danger  bool
	theme   *styles.Theme
}

// NewConfirmDialog creates a dialog.
func NewConfirmDialog(theme *styles.Theme, id, title, message, confirm string) *ConfirmDialog {
	return &ConfirmDialog{
		ID:      id,
		Title:   title,
		Message: message,
		Confirm: confirm,
		theme:   theme,
	}
}

// Update answers the dialog on y/n/enter/esc.
func (d *ConfirmDialog) Update(msg tea.Msg) (*ConfirmDialog, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	var confirmed bool
	switch km.String() {
	case "y", "Y", "enter":
		confirmed = true
	case "n", "N", "esc", "q":
		confirmed = false
	default:
		return d, nil
	}
	id := d.ID
	return d, func() tea.Msg { return ConfirmMsg{ID: id, Confirmed: confirmed} }
}

// View renders the dialog.
func (d *ConfirmDialog) View() string {
	button := d.theme.Button
	if d.Danger {
		button = d.theme.ButtonDanger
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		button.Render(d.Confirm+" (y)"), "  ", d.theme.ButtonDisabled.Render("Cancel (n)"))

	return d.theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
		d.theme.ModalTitle.Render(d.Title),
		d.theme.EmptyText.Width(48).Render(d.Message),
		"",
		buttons,
	))
}
