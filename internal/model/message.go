// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// TOOL CALLS
// =============================================================================

// ToolCall records a task operation the assistant performed while answering,
// e.g. add_task or complete_task.
type ToolCall struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat message.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Pending is set on a user message until the assistant answers.
	Pending bool `json:"-"`
	// Failed is set when the message could not be delivered.
	Failed bool `json:"failed,omitempty"`
	// Error explains a failure.
	Error string `json:"error,omitempty"`

	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a message with a fresh UUID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns the first line of the content fitted to width columns.
func (m *Message) Preview(width int) string {
	return util.Truncate(util.FirstLine(m.Content), width)
}

// ChangedTasks reports whether the assistant touched any tasks, which means
// a cached task list is stale.
func (m *Message) ChangedTasks() bool {
	for _, call := range m.ToolCalls {
		switch call.Tool {
		case "list_tasks", "get_task", "":
		default:
			return true
		}
	}
	return false
}

// TimeString returns the message time as HH:MM.
func (m *Message) TimeString() string {
	return m.Timestamp.Format("15:04")
}
