// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/storage"
)

// Commands capture only what they need so the goroutine that runs them
// never touches the Model.

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func authenticateCmd(ctx context.Context, client *api.Client, store *auth.Store, email, password string, register bool) tea.Cmd {
	return func() tea.Msg {
		var (
			resp *api.AuthResponse
			err  error
		)
		if register {
			resp, err = client.Register(ctx, email, password)
		} else {
			resp, err = client.Login(ctx, email, password)
		}
		if err != nil {
			return authResultMsg{register: register, err: err}
		}

		creds := auth.Credentials{
			Token:  resp.AccessToken,
			Email:  resp.User.Email,
			UserID: resp.User.ID,
		}
		if creds.Email == "" {
			creds.Email = email
		}
		if store != nil {
			if err := store.Save(creds); err != nil {
				return authResultMsg{register: register, err: err}
			}
		}
		return authResultMsg{session: auth.NewSession(creds), register: register}
	}
}

func waitForCredentialsCmd(ctx context.Context, w *auth.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case change := <-w.Events():
			return credentialsChangedMsg{change: change}
		}
	}
}

// =============================================================================
// TASK COMMANDS
// =============================================================================

func loadTasksCmd(ctx context.Context, client *api.Client) tea.Cmd {
	return func() tea.Msg {
		tasks, err := client.ListTasks(ctx, model.FilterAll)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func createTaskCmd(ctx context.Context, client *api.Client, in api.TaskInput) tea.Cmd {
	return func() tea.Msg {
		task, err := client.CreateTask(ctx, in)
		return taskSavedMsg{task: task, created: true, err: err}
	}
}

func updateTaskCmd(ctx context.Context, client *api.Client, id int, title, description string) tea.Cmd {
	return func() tea.Msg {
		task, err := client.UpdateTask(ctx, id, api.TaskPatch{
			Title:       &title,
			Description: &description,
		})
		return taskSavedMsg{task: task, err: err}
	}
}

func toggleTaskCmd(ctx context.Context, client *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		task, err := client.ToggleComplete(ctx, id)
		return taskToggledMsg{id: id, task: task, err: err}
	}
}

func deleteTaskCmd(ctx context.Context, client *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: client.DeleteTask(ctx, id)}
	}
}

// =============================================================================
// CHAT COMMANDS
// =============================================================================

func sendChatCmd(ctx context.Context, client *api.Client, text string, remoteID int, userMsgID string) tea.Cmd {
	return func() tea.Msg {
		req := api.ChatRequest{Message: text}
		if remoteID > 0 {
			id := remoteID
			req.ConversationID = &id
		}
		resp, err := client.Chat(ctx, req)
		return chatReplyMsg{userMsgID: userMsgID, resp: resp, err: err}
	}
}

// saveMessageCmd persists msg. conv and msg are copied so the write does
// not race later edits.
func saveMessageCmd(ctx context.Context, h *storage.History, conv *model.Conversation, msgs ...*model.Message) tea.Cmd {
	if h == nil || conv == nil || len(msgs) == 0 {
		return nil
	}
	header := *conv
	header.Messages = nil
	copies := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		copies = append(copies, *m)
	}
	return func() tea.Msg {
		for i := range copies {
			if err := h.SaveMessage(ctx, &header, &copies[i]); err != nil {
				return historySavedMsg{err: err}
			}
		}
		return nil
	}
}

// loadHistoryCmd prunes old conversations and resumes the most recent one.
func loadHistoryCmd(ctx context.Context, h *storage.History, keep int) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := h.Prune(ctx, keep); err != nil {
			return historyLoadedMsg{err: err}
		}
		list, err := h.ListConversations(ctx, 1)
		if err != nil || len(list) == 0 {
			return historyLoadedMsg{err: err}
		}
		conv, err := h.LoadConversation(ctx, list[0].ID)
		if errors.Is(err, storage.ErrConversationNotFound) {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{conv: conv, err: err}
	}
}
