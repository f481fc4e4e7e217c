// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/taskchat-tui/internal/composer"
	"github.com/jeranaias/taskchat-tui/internal/model"
)

// ChatRequest is the body of the chat endpoint. A nil ConversationID
// starts a new conversation.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID *int   `json:"conversation_id,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	ConversationID int              `json:"conversation_id"`
	Response       string           `json:"response"`
	ToolCalls      []model.ToolCall `json:"tool_calls,omitempty"`
}

// Chat sends one message to the task assistant. The message must satisfy
// the composer's bounds: non-blank and at most composer.MaxLength runes.
// Chat is never retried since the assistant may already have changed tasks.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(req.Message); n > composer.MaxLength {
		return nil, fmt.Errorf("%w: %d characters (max %d)", ErrMessageTooLong, n, composer.MaxLength)
	}

	var out ChatResponse
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/api/chat",
		body:    req,
		out:     &out,
		auth:    true,
		timeout: c.chatTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
