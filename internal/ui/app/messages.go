// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
)

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// authResultMsg is the outcome of a login or registration.
type authResultMsg struct {
	session  *auth.Session
	register bool
	err      error
}

// credentialsChangedMsg reports an edit of the credentials file by another
// process.
type credentialsChangedMsg struct {
	change auth.CredentialsChange
}

// =============================================================================
// TASK MESSAGES
// =============================================================================

// tasksLoadedMsg carries a fresh task list.
type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

// taskSavedMsg is the outcome of a create or edit.
type taskSavedMsg struct {
	task    *model.Task
	created bool
	err     error
}

// taskToggledMsg is the outcome of a completion toggle.
type taskToggledMsg struct {
	id   int
	task *model.Task
	err  error
}

// taskDeletedMsg is the outcome of a delete.
type taskDeletedMsg struct {
	id  int
	err error
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// chatReplyMsg is the assistant's answer to the user message userMsgID.
type chatReplyMsg struct {
	userMsgID string
	resp      *api.ChatResponse
	err       error
}

// historyLoadedMsg carries the conversation resumed at startup.
type historyLoadedMsg struct {
	conv *model.Conversation
	err  error
}

// historySavedMsg reports a failed history write.
type historySavedMsg struct {
	err error
}

// errorsIsNotFound treats deleting an already-deleted task as success.
func errorsIsNotFound(err error) bool {
	return errors.Is(err, api.ErrNotFound)
}
