// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/components"
)

const (
	formTask      = "task"
	confirmDelete = "delete:"
)

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Modals take every message while open.
	if m.confirm != nil {
		if cm, ok := msg.(components.ConfirmMsg); ok {
			return m.handleConfirm(cm)
		}
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	if m.taskForm != nil {
		switch msg := msg.(type) {
		case components.FormSubmitMsg:
			return m.submitTask(msg)
		case components.FormCancelMsg:
			m.taskForm = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.taskForm, cmd = m.taskForm.Update(msg)
		return m, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(km, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(km, m.keys.Up):
		m.tasks.Up()
	case key.Matches(km, m.keys.Down):
		m.tasks.Down()
	case key.Matches(km, m.keys.Top):
		m.tasks.Top()
	case key.Matches(km, m.keys.Bottom):
		m.tasks.Bottom()
	case key.Matches(km, m.keys.Filter):
		m.tasks.SetFilter(m.tasks.Filter().Next())
	case key.Matches(km, m.keys.Chat):
		m.screen = screenChat
		m.layoutChat()
		return m, m.input.Focus()
	case key.Matches(km, m.keys.Logout):
		return m, m.logout("You have been logged out.")

	case key.Matches(km, m.keys.Refresh):
		if ok, cmd := m.requireSession(); !ok {
			return m, cmd
		}
		m.loadingTasks = true
		return m, loadTasksCmd(m.ctx, m.authed)

	case key.Matches(km, m.keys.Add):
		if ok, cmd := m.requireSession(); !ok {
			return m, cmd
		}
		m.editingID = 0
		m.taskForm = m.newTaskForm("New task", "Create Task", model.Task{})
		return m, m.taskForm.Init()

	case key.Matches(km, m.keys.Edit):
		task, ok := m.tasks.Selected()
		if !ok {
			return m, nil
		}
		if ok, cmd := m.requireSession(); !ok {
			return m, cmd
		}
		m.editingID = task.ID
		m.taskForm = m.newTaskForm("Edit task", "Save Changes", task)
		return m, m.taskForm.Init()

	case key.Matches(km, m.keys.Toggle):
		task, ok := m.tasks.Selected()
		if !ok {
			return m, nil
		}
		if ok, cmd := m.requireSession(); !ok {
			return m, cmd
		}
		return m, toggleTaskCmd(m.ctx, m.authed, task.ID)

	case key.Matches(km, m.keys.Delete):
		task, ok := m.tasks.Selected()
		if !ok {
			return m, nil
		}
		m.confirm = components.NewConfirmDialog(m.theme,
			confirmDelete+strconv.Itoa(task.ID),
			"Delete task",
			fmt.Sprintf("Delete %q? This cannot be undone.", task.Title),
			"Delete")
		m.confirm.Danger = true
	}
	return m, nil
}

func (m *Model) newTaskForm(title, submit string, task model.Task) *components.Form {
	f := components.NewForm(m.theme, formTask, title, submit,
		components.FieldSpec{
			Name: "title", Label: "Title", Placeholder: "What needs to be done?",
			Value: task.Title, CharLimit: model.MaxTitleLength,
		},
		components.FieldSpec{
			Name: "description", Label: "Description (optional)", Placeholder: "Add some details",
			Value: task.Description, CharLimit: model.MaxDescriptionLength,
		},
	)
	f.SetWidth(min(m.theme.ContentWidth(), 64))
	return f
}

func (m Model) submitTask(msg components.FormSubmitMsg) (tea.Model, tea.Cmd) {
	form := auth.TaskForm{Title: msg.Values["title"], Description: msg.Values["description"]}
	if err := form.Validate(); err != nil {
		return m, m.taskForm.SetErrors(formErrorMap(err))
	}
	if ok, cmd := m.requireSession(); !ok {
		return m, cmd
	}

	m.taskForm.SetErrors(nil)
	m.taskForm.SetBusy(true)
	if m.editingID != 0 {
		return m, updateTaskCmd(m.ctx, m.authed, m.editingID, form.Title, form.Description)
	}
	return m, createTaskCmd(m.ctx, m.authed, api.TaskInput{Title: form.Title, Description: form.Description})
}

func (m Model) handleConfirm(msg components.ConfirmMsg) (tea.Model, tea.Cmd) {
	m.confirm = nil
	if !msg.Confirmed || !strings.HasPrefix(msg.ID, confirmDelete) {
		return m, nil
	}
	id, err := strconv.Atoi(strings.TrimPrefix(msg.ID, confirmDelete))
	if err != nil {
		return m, nil
	}
	if ok, cmd := m.requireSession(); !ok {
		return m, cmd
	}
	return m, deleteTaskCmd(m.ctx, m.authed, id)
}

// =============================================================================
// RESULTS
// =============================================================================

func (m Model) handleTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	m.loadingTasks = false
	if msg.err != nil {
		return m, m.handleError(msg.err)
	}
	m.tasks.SetTasks(msg.tasks)
	return m, nil
}

func (m Model) handleTaskSaved(msg taskSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if auth.IsAuthError(msg.err) {
			return m, m.handleError(msg.err)
		}
		if m.taskForm != nil {
			m.taskForm.SetBusy(false)
			m.taskForm.SetError(api.UserMessage(msg.err))
			return m, nil
		}
		return m, m.handleError(msg.err)
	}

	m.taskForm = nil
	m.tasks.SetTasks(model.UpsertTask(m.tasks.Tasks(), *msg.task))
	m.tasks.SelectID(msg.task.ID)
	if msg.created {
		m.toasts.AddSuccess("Task created")
	} else {
		m.toasts.AddSuccess("Task updated")
	}
	return m, nil
}

func (m Model) handleTaskToggled(msg taskToggledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.handleError(msg.err)
	}
	m.tasks.SetTasks(model.UpsertTask(m.tasks.Tasks(), *msg.task))
	m.tasks.SelectID(msg.id)
	return m, nil
}

func (m Model) handleTaskDeleted(msg taskDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !errorsIsNotFound(msg.err) {
		return m, m.handleError(msg.err)
	}
	m.tasks.SetTasks(model.RemoveTask(m.tasks.Tasks(), msg.id))
	m.toasts.AddSuccess("Task deleted")
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) dashboardView() string {
	var body string
	switch {
	case m.loadingTasks && len(m.tasks.Tasks()) == 0:
		body = m.theme.Hint.Render("Loading tasks...")
	case len(m.tasks.Tasks()) == 0:
		body = components.RenderTaskEmptyState(m.theme, m.theme.ContentWidth())
	default:
		filter := m.theme.FormLabel.Render("Showing: " + string(m.tasks.Filter()))
		body = lipgloss.JoinVertical(lipgloss.Left, filter, "", m.tasks.View())
	}

	switch {
	case m.confirm != nil:
		return m.overlay(m.confirm.View())
	case m.taskForm != nil:
		return m.overlay(m.taskForm.View())
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).Render(body)
}
