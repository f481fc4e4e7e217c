// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer draws chat messages as bubbles. Assistant replies are
// rendered as markdown when enabled.
type MessageRenderer struct {
	theme          *styles.Theme
	ShowTimestamps bool
	Markdown       bool

	md      *glamour.TermRenderer
	mdWidth int
}

// NewMessageRenderer creates a renderer.
func NewMessageRenderer(theme *styles.Theme, showTimestamps, markdown bool) *MessageRenderer {
	return &MessageRenderer{
		theme:          theme,
		ShowTimestamps: showTimestamps,
		Markdown:       markdown,
	}
}

// RenderAll renders messages top to bottom separated by blank lines.
func (r *MessageRenderer) RenderAll(msgs []*model.Message, width int) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Render(m, width))
	}
	return strings.Join(parts, "\n\n")
}

// Render renders one message.
func (r *MessageRenderer) Render(msg *model.Message, width int) string {
	if msg == nil {
		return ""
	}
	switch msg.Role {
	case model.RoleUser:
		return r.renderUser(msg, width)
	case model.RoleAssistant:
		return r.renderAssistant(msg, width)
	default:
		return r.theme.SystemBubble.Width(width).Render(msg.Content)
	}
}

func (r *MessageRenderer) header(msg *model.Message) string {
	h := r.theme.RoleLabel.Render(msg.Role.DisplayName())
	if r.ShowTimestamps {
		h += " " + r.theme.Timestamp.Render(msg.TimeString())
	}
	return h
}

// ==========================================================================
// USER BUBBLE
// ==========================================================================

func (r *MessageRenderer) renderUser(msg *model.Message, width int) string {
	bubble := r.theme.UserBubble
	inner := bubbleWidth(bubble, width)
	body := lipgloss.NewStyle().Width(inner).Render(msg.Content)

	var status string
	switch {
	case msg.Failed:
		reason := msg.Error
		if reason == "" {
			reason = "not delivered"
		}
		status = r.theme.FailedNote.Render(styles.IconError + " " + reason)
	case msg.Pending:
		status = r.theme.Hint.Render("sending...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, r.header(msg), body)
	if status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, status)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble.Render(content))
}

// ==========================================================================
// ASSISTANT BUBBLE
// ==========================================================================

func (r *MessageRenderer) renderAssistant(msg *model.Message, width int) string {
	bubble := r.theme.AssistantBubble
	inner := bubbleWidth(bubble, width)

	body := r.renderMarkdown(msg.Content, inner)
	content := lipgloss.JoinVertical(lipgloss.Left, r.header(msg), body)
	if len(msg.ToolCalls) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, content, r.renderToolCalls(msg.ToolCalls, inner))
	}
	return bubble.Render(content)
}

// renderMarkdown renders content with glamour, falling back to plain text.
func (r *MessageRenderer) renderMarkdown(content string, width int) string {
	plain := lipgloss.NewStyle().Width(width).Render(content)
	if !r.Markdown {
		return plain
	}
	if r.md == nil || r.mdWidth != width {
		style := "light"
		if r.theme.IsDark {
			style = "dark"
		}
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return plain
		}
		r.md, r.mdWidth = md, width
	}
	out, err := r.md.Render(content)
	if err != nil {
		return plain
	}
	return strings.Trim(out, "\n")
}

// renderToolCalls lists the actions the assistant took.
func (r *MessageRenderer) renderToolCalls(calls []model.ToolCall, width int) string {
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		line := "⚙ " + c.Tool
		if args := formatArgs(c.Arguments); args != "" {
			line += " " + args
		}
		lines = append(lines, r.theme.ToolBadge.Render(util.Truncate(line, width)))
	}
	return strings.Join(lines, "\n")
}

// formatArgs renders arguments as sorted key=value pairs.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// bubbleWidth returns the text width inside a bubble for a given line width.
func bubbleWidth(bubble lipgloss.Style, width int) int {
	inner := width*4/5 - bubble.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	return inner
}
