// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// =============================================================================
// TASK LIST
// =============================================================================

func sampleTasks() []model.Task {
	day := func(d int) model.Timestamp {
		return model.Timestamp{Time: time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)}
	}
	return []model.Task{
		{ID: 1, Title: "Buy groceries", Description: "milk, eggs", CreatedAt: day(1)},
		{ID: 2, Title: "Call mom", IsCompleted: true, CreatedAt: day(2)},
		{ID: 3, Title: "File taxes", CreatedAt: day(3)},
	}
}

func TestTaskList_SortsPendingFirst(t *testing.T) {
	tl := NewTaskList(styles.NewTheme("dark"))
	tl.SetTasks(sampleTasks())

	ids := make([]int, 0, 3)
	for _, task := range tl.Visible() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestTaskList_CursorAndFilter(t *testing.T) {
	tl := NewTaskList(styles.NewTheme("dark"))
	tl.SetTasks(sampleTasks())

	tl.Down()
	sel, ok := tl.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel.ID)

	tl.Down()
	tl.Down()
	sel, _ = tl.Selected()
	assert.Equal(t, 2, sel.ID, "cursor stops at the last task")

	tl.SetFilter(model.FilterPending)
	assert.Len(t, tl.Visible(), 2)
	sel, _ = tl.Selected()
	assert.Equal(t, 1, sel.ID, "cursor is clamped after filtering")

	tl.SetFilter(model.FilterCompleted)
	tl.SetTasks(nil)
	_, ok = tl.Selected()
	assert.False(t, ok)
}

func TestTaskList_KeepsSelectionAcrossRefresh(t *testing.T) {
	tl := NewTaskList(styles.NewTheme("dark"))
	tl.SetTasks(sampleTasks())
	require.True(t, tl.SelectID(1))

	tasks := sampleTasks()
	tasks = append(tasks, model.Task{ID: 4, Title: "New", CreatedAt: model.Timestamp{Time: time.Now()}})
	tl.SetTasks(tasks)

	sel, _ := tl.Selected()
	assert.Equal(t, 1, sel.ID)
}

func TestTaskList_View(t *testing.T) {
	tl := NewTaskList(styles.NewTheme("dark"))
	assert.Empty(t, tl.View(), "no tasks renders nothing so the caller shows the empty state")

	tl.SetTasks(sampleTasks())
	out := tl.View()
	assert.Contains(t, out, "Buy groceries")
	assert.Contains(t, out, "milk, eggs")
	assert.Contains(t, out, "Mar 1, 2025")
	assert.Contains(t, out, styles.CheckboxDone)

	tl.SetTasks([]model.Task{{ID: 9, Title: "done", IsCompleted: true}})
	tl.SetFilter(model.FilterPending)
	assert.Contains(t, tl.View(), "Nothing pending")
}

func TestTaskList_ScrollsToCursor(t *testing.T) {
	tl := NewTaskList(styles.NewTheme("dark"))
	var tasks []model.Task
	for i := 1; i <= 20; i++ {
		tasks = append(tasks, model.Task{ID: i, Title: "task", CreatedAt: model.Timestamp{Time: time.Unix(int64(i), 0)}})
	}
	tl.SetTasks(tasks)
	tl.SetSize(60, 9)
	tl.Bottom()

	out := tl.View()
	assert.Contains(t, out, "task")
	assert.NotContains(t, out, "more below")
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager(t *testing.T) {
	m := NewToastManager()
	id := m.AddError("boom")
	m.AddSuccess("saved")
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "saved", m.Toasts()[0].Message, "newest first")

	m.Dismiss(id)
	assert.Equal(t, 1, m.Len())

	for i := 0; i < 10; i++ {
		m.AddInfo("x")
	}
	assert.Equal(t, maxToasts, m.Len())

	assert.False(t, m.Tick(time.Now().Add(time.Minute)))
	assert.Equal(t, 0, m.Len())
}

func TestRenderToastStack(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Empty(t, RenderToastStack(theme, nil, 80))

	out := RenderToastStack(theme, []Toast{NewToast("Task created", ToastKindSuccess)}, 80)
	assert.Contains(t, out, "Task created")
	assert.Contains(t, out, styles.IconSuccess)
}

// =============================================================================
// FORMS & DIALOGS
// =============================================================================

func TestForm_NavigateAndSubmit(t *testing.T) {
	f := NewForm(styles.NewTheme("dark"), "login", "Sign in", "Sign In",
		FieldSpec{Name: "email", Label: "Email"},
		FieldSpec{Name: "password", Label: "Password", Password: true},
	)
	f.Init()
	assert.Equal(t, "email", f.Focused())

	for _, r := range "a@b.co" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "password", f.Focused())

	for _, r := range "hunter22" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.NotContains(t, f.View(), "hunter22", "password is masked")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(cmd)
	require.IsType(t, FormSubmitMsg{}, msg)
	sub := msg.(FormSubmitMsg)
	assert.Equal(t, "login", sub.FormID)
	assert.Equal(t, "a@b.co", sub.Values["email"])
	assert.Equal(t, "hunter22", sub.Values["password"])
}

func TestForm_ErrorsAndBusy(t *testing.T) {
	f := NewForm(styles.NewTheme("dark"), "task", "New task", "Create",
		FieldSpec{Name: "title", Label: "Title"},
		FieldSpec{Name: "description", Label: "Description"},
	)
	f.Init()
	f.SetErrors(map[string]string{"title": "Title is required", "server": "boom"})
	out := f.View()
	assert.Contains(t, out, "Title is required")
	assert.Contains(t, out, "boom")
	assert.Equal(t, "title", f.Focused())

	f.SetBusy(true)
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "busy form does not resubmit")

	_, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, FormCancelMsg{FormID: "task"}, runCmd(cmd))
}

func TestConfirmDialog(t *testing.T) {
	d := NewConfirmDialog(styles.NewTheme("dark"), "delete:3", "Delete task", "Delete \"x\"?", "Delete")
	assert.Contains(t, d.View(), "Delete task")

	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Equal(t, ConfirmMsg{ID: "delete:3", Confirmed: true}, runCmd(cmd))

	_, cmd = d.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ConfirmMsg{ID: "delete:3", Confirmed: false}, runCmd(cmd))

	_, cmd = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

// =============================================================================
// MESSAGES & EMPTY STATES
// =============================================================================

func TestMessageRenderer(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme("dark"), true, false)

	user := model.NewMessage(model.RoleUser, "add milk")
	user.Failed = true
	user.Error = "Backend unreachable"
	out := r.Render(user, 80)
	assert.Contains(t, out, "add milk")
	assert.Contains(t, out, "Backend unreachable")

	reply := model.NewMessage(model.RoleAssistant, "Added it.")
	reply.ToolCalls = []model.ToolCall{{Tool: "add_task", Arguments: map[string]any{"title": "milk"}}}
	out = r.Render(reply, 80)
	assert.Contains(t, out, "Added it.")
	assert.Contains(t, out, "add_task (title=milk)")

	assert.Empty(t, r.Render(nil, 80))
}

func TestChatWelcome_CyclesSuggestions(t *testing.T) {
	w := NewChatWelcome(styles.NewTheme("dark"))
	assert.Equal(t, -1, w.Selected())
	assert.Equal(t, ChatSuggestions[0], w.Next())
	for i := 1; i < len(ChatSuggestions); i++ {
		w.Next()
	}
	assert.Equal(t, ChatSuggestions[0], w.Next(), "wraps around")
	assert.Contains(t, w.View(80), "Welcome to AI Task Assistant")
}

func TestRenderTaskEmptyState(t *testing.T) {
	out := RenderTaskEmptyState(styles.NewTheme("dark"), 80)
	assert.Contains(t, out, "No tasks yet")
	assert.Contains(t, out, "Create Your First Task")
	assert.True(t, strings.Contains(out, "first task"))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "5s", formatElapsed(5*time.Second))
	assert.Equal(t, "1m 05s", formatElapsed(65*time.Second))
}
