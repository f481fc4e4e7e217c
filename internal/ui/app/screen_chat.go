// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/components"
)

func (m Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		return m.sendMessage(msg.Text)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.input.Blur()
			m.screen = screenDashboard
			return m, nil
		case key.Matches(msg, m.keys.NewChat):
			if m.sending {
				return m, nil
			}
			m.conv = model.NewConversation()
			m.welcome.Reset()
			m.layoutChat()
			m.toasts.AddInfo("Started a new conversation")
			return m, nil
		case key.Matches(msg, m.keys.Suggest) && m.conv.IsEmpty() && m.canUseSuggestion():
			m.input.SetValue(m.welcome.Next())
			m.layoutChat()
			return m, nil
		case key.Matches(msg, m.keys.ScrollUp):
			m.viewport.HalfViewUp()
			return m, nil
		case key.Matches(msg, m.keys.ScrollDown):
			m.viewport.HalfViewDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Height()
	m.input, cmd = m.input.Update(msg)
	if m.input.Height() != before {
		m.layoutChat()
	}
	return m, cmd
}

// canUseSuggestion is true while the draft is empty or still holds the
// previously offered suggestion.
func (m Model) canUseSuggestion() bool {
	v := m.input.Value()
	if v == "" {
		return true
	}
	i := m.welcome.Selected()
	return i >= 0 && v == components.ChatSuggestions[i]
}

// sendMessage dispatches one accepted message. The composer has already
// cleared the draft; sending stays disabled until the reply arrives.
func (m Model) sendMessage(text string) (tea.Model, tea.Cmd) {
	if ok, cmd := m.requireSession(); !ok {
		return m, cmd
	}

	userMsg := m.conv.AddUserMessage(text)
	m.sending = true
	m.input.SetDisabled(true)
	m.welcome.Reset()
	m.layoutChat()

	return m, tea.Batch(
		m.thinking.Start(),
		sendChatCmd(m.ctx, m.authed, text, m.conv.RemoteID, userMsg.ID),
		saveMessageCmd(m.ctx, m.history, m.conv, userMsg),
	)
}

func (m Model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	m.input.SetDisabled(false)
	m.thinking.Stop()

	if msg.err != nil {
		m.log.Info("chat failed", zap.Error(msg.err))
		if auth.IsAuthError(msg.err) {
			return m, m.logout(auth.GuardMessage(msg.err))
		}
		reason := api.UserMessage(msg.err)
		m.conv.MarkFailed(msg.userMsgID, reason)
		m.toasts.AddError(reason)
		m.layoutChat()
		if failed := m.conv.MessageByID(msg.userMsgID); failed != nil {
			return m, saveMessageCmd(m.ctx, m.history, m.conv, failed)
		}
		return m, nil
	}

	m.conv.RemoteID = msg.resp.ConversationID
	reply := m.conv.AddAssistantMessage(msg.resp.Response, msg.resp.ToolCalls)
	m.layoutChat()

	cmds := []tea.Cmd{saveMessageCmd(m.ctx, m.history, m.conv, reply)}
	if reply.ChangedTasks() && m.authed != nil {
		cmds = append(cmds, loadTasksCmd(m.ctx, m.authed))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("history unavailable", zap.Error(msg.err))
		return m, nil
	}
	// A conversation started before the load finished wins.
	if msg.conv == nil || !m.conv.IsEmpty() {
		return m, nil
	}
	m.conv = msg.conv
	m.layoutChat()
	return m, nil
}

// layoutChat sizes the viewport around the composer and re-renders the
// transcript, keeping it pinned to the bottom.
func (m *Model) layoutChat() {
	width := m.theme.ContentWidth()
	height := m.bodyHeight() - m.input.Height() - 1
	if height < 3 {
		height = 3
	}
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.renderer.RenderAll(m.conv.Messages, width))
	m.viewport.GotoBottom()
}

func (m Model) chatView() string {
	var transcript string
	if m.conv.IsEmpty() {
		transcript = lipgloss.NewStyle().Height(m.viewport.Height).Render(
			m.welcome.View(m.theme.ContentWidth()))
	} else {
		transcript = m.viewport.View()
	}

	status := m.thinking.View()
	if status == "" && m.conv.RemoteID > 0 {
		status = m.theme.Hint.Render(m.conv.Title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, transcript, status, m.input.View())
}
