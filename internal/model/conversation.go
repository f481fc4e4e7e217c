// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/taskchat-tui/internal/util"
)

// MaxMessages is the maximum number of messages kept in memory per
// conversation. Older messages are pruned; the history store keeps them all.
const MaxMessages = 500

// titleWidth bounds auto-generated conversation titles.
const titleWidth = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is one chat thread with the assistant.
type Conversation struct {
	// ID is the local identifier used by the history store.
	ID string `json:"id"`
	// RemoteID is the backend's conversation_id, 0 until the first reply.
	RemoteID  int       `json:"remote_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends msg and refreshes the title.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	c.pruneOldMessages()
}

// AddUserMessage appends a pending user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Pending = true
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage appends the assistant's reply and settles every
// pending user message.
func (c *Conversation) AddAssistantMessage(content string, calls []ToolCall) *Message {
	for _, m := range c.Messages {
		m.Pending = false
	}
	msg := NewMessage(RoleAssistant, content)
	msg.ToolCalls = calls
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage appends a local notice (errors, hints).
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewMessage(RoleSystem, content)
	c.AddMessage(msg)
	return msg
}

// MarkFailed flags the message as undelivered. Returns false if unknown.
func (c *Conversation) MarkFailed(id, reason string) bool {
	msg := c.MessageByID(id)
	if msg == nil {
		return false
	}
	msg.Pending = false
	msg.Failed = true
	msg.Error = reason
	c.UpdatedAt = time.Now()
	return true
}

// MessageByID returns the message with the given ID, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// History returns a copy of the message list.
func (c *Conversation) History() []*Message {
	out := make([]*Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// HasPending reports whether a user message is awaiting a reply.
func (c *Conversation) HasPending() bool {
	for _, m := range c.Messages {
		if m.Pending {
			return true
		}
	}
	return false
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// updateTitle names the conversation after its first user message.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = util.Truncate(util.FirstLine(msg.Content), titleWidth)
			return
		}
	}
}

func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	excess := len(c.Messages) - MaxMessages
	kept := make([]*Message, MaxMessages)
	copy(kept, c.Messages[excess:])
	c.Messages = kept
}
