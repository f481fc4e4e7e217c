// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// =============================================================================
// TASK EMPTY STATE
// =============================================================================

// RenderTaskEmptyState renders the placeholder for a user with no tasks.
func RenderTaskEmptyState(theme *styles.Theme, width int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.EmptyTitle.Render("No tasks yet"),
		"",
		theme.EmptyText.Render("Get started by creating your first task. Stay organized and track your progress!"),
		"",
		theme.Button.Render("Create Your First Task")+" "+theme.Hint.Render("press a"),
	)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(min(width, 60)).Align(lipgloss.Center).Padding(2, 0).Render(body))
}

// =============================================================================
// CHAT WELCOME
// =============================================================================

// ChatSuggestions are the starter prompts offered in an empty chat.
var ChatSuggestions = []string{
	"Add a task to buy groceries",
	"Show me my tasks",
	"Mark task 1 as complete",
	"Create a task to call mom",
	"What tasks do I have?",
}

// ChatWelcome is the empty-chat screen. Tab cycles through the
// suggestions so one can be sent without typing.
type ChatWelcome struct {
	theme    *styles.Theme
	selected int
}

// NewChatWelcome creates the welcome screen with nothing highlighted.
func NewChatWelcome(theme *styles.Theme) *ChatWelcome {
	return &ChatWelcome{theme: theme, selected: -1}
}

// Next highlights the next suggestion and returns it.
func (w *ChatWelcome) Next() string {
	w.selected = (w.selected + 1) % len(ChatSuggestions)
	return ChatSuggestions[w.selected]
}

// Reset clears the highlight.
func (w *ChatWelcome) Reset() {
	w.selected = -1
}

// Selected returns the highlighted index, or -1.
func (w *ChatWelcome) Selected() int {
	return w.selected
}

// View renders the welcome text and suggestions.
func (w *ChatWelcome) View(width int) string {
	var b strings.Builder
	for i, s := range ChatSuggestions {
		line := fmt.Sprintf("  %s", s)
		if i == w.selected {
			line = w.theme.HelpKey.Render(styles.CursorMarker + " " + s)
		} else {
			line = w.theme.EmptyText.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		w.theme.EmptyTitle.Render("Welcome to AI Task Assistant"),
		"",
		w.theme.EmptyText.Render("Manage your tasks naturally through conversation. Ask me to add, view, update, or complete tasks."),
		"",
		w.theme.FormLabel.Render("Try one of these (Tab to pick):"),
		strings.TrimRight(b.String(), "\n"),
	)
	return lipgloss.NewStyle().Width(min(width, 72)).Padding(1, 2).Render(body)
}
