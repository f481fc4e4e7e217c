// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// TASK LIST COMPONENT
// =============================================================================

// TaskList renders the user's tasks with a movable cursor.
type TaskList struct {
	all     []model.Task
	visible []model.Task
	filter  model.TaskFilter
	cursor  int
	offset  int

	theme  *styles.Theme
	width  int
	height int
}

// NewTaskList creates an empty task list.
func NewTaskList(theme *styles.Theme) *TaskList {
	return &TaskList{
		filter: model.FilterAll,
		theme:  theme,
		width:  80,
		height: 20,
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetSize sets the component dimensions.
func (tl *TaskList) SetSize(width, height int) {
	tl.width = width
	tl.height = height
	tl.scroll()
}

// SetTasks replaces the tasks. The cursor stays on the same task id when
// it is still visible.
func (tl *TaskList) SetTasks(tasks []model.Task) {
	selected, hadSelection := tl.Selected()
	tl.all = model.SortTasks(tasks)
	tl.refilter()
	if hadSelection {
		tl.SelectID(selected.ID)
	}
}

// Tasks returns every task, ignoring the filter.
func (tl *TaskList) Tasks() []model.Task {
	return tl.all
}

// Visible returns the tasks that pass the filter, in display order.
func (tl *TaskList) Visible() []model.Task {
	return tl.visible
}

// SetFilter changes the filter.
func (tl *TaskList) SetFilter(f model.TaskFilter) {
	tl.filter = f
	tl.refilter()
}

// Filter returns the active filter.
func (tl *TaskList) Filter() model.TaskFilter {
	return tl.filter
}

// Stats summarises all tasks.
func (tl *TaskList) Stats() model.TaskStats {
	return model.Stats(tl.all)
}

func (tl *TaskList) refilter() {
	tl.visible = model.FilterTasks(tl.all, tl.filter)
	tl.clampCursor()
}

// =============================================================================
// CURSOR
// =============================================================================

// Selected returns the task under the cursor.
func (tl *TaskList) Selected() (model.Task, bool) {
	if tl.cursor < 0 || tl.cursor >= len(tl.visible) {
		return model.Task{}, false
	}
	return tl.visible[tl.cursor], true
}

// SelectID moves the cursor to the task with id if visible.
func (tl *TaskList) SelectID(id int) bool {
	for i, t := range tl.visible {
		if t.ID == id {
			tl.cursor = i
			tl.scroll()
			return true
		}
	}
	return false
}

// Cursor returns the cursor index into Visible.
func (tl *TaskList) Cursor() int {
	return tl.cursor
}

// Up moves the cursor up one task.
func (tl *TaskList) Up() {
	tl.cursor--
	tl.clampCursor()
}

// Down moves the cursor down one task.
func (tl *TaskList) Down() {
	tl.cursor++
	tl.clampCursor()
}

// Top moves the cursor to the first task.
func (tl *TaskList) Top() {
	tl.cursor = 0
	tl.clampCursor()
}

// Bottom moves the cursor to the last task.
func (tl *TaskList) Bottom() {
	tl.cursor = len(tl.visible) - 1
	tl.clampCursor()
}

func (tl *TaskList) clampCursor() {
	if tl.cursor >= len(tl.visible) {
		tl.cursor = len(tl.visible) - 1
	}
	if tl.cursor < 0 {
		tl.cursor = 0
	}
	tl.scroll()
}

// scroll keeps the cursor row inside the viewport.
func (tl *TaskList) scroll() {
	if tl.cursor < tl.offset {
		tl.offset = tl.cursor
	}
	for tl.offset < tl.cursor && tl.rowsBetween(tl.offset, tl.cursor+1) > tl.height {
		tl.offset++
	}
	if tl.offset < 0 {
		tl.offset = 0
	}
}

func (tl *TaskList) rowsBetween(from, to int) int {
	rows := 0
	for i := from; i < to && i < len(tl.visible); i++ {
		rows += tl.itemHeight(tl.visible[i])
	}
	return rows
}

func (tl *TaskList) itemHeight(t model.Task) int {
	h := 3 // title, date, spacer
	if t.Description != "" {
		h++
	}
	return h
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the visible window of tasks. It returns "" when there is
// nothing to show so the caller can render an empty state.
func (tl *TaskList) View() string {
	if len(tl.visible) == 0 {
		if len(tl.all) == 0 {
			return ""
		}
		return tl.renderNoMatching()
	}

	var b strings.Builder
	used := 0
	for i := tl.offset; i < len(tl.visible); i++ {
		t := tl.visible[i]
		h := tl.itemHeight(t)
		if used > 0 && used+h > tl.height {
			break
		}
		b.WriteString(tl.renderTask(t, i == tl.cursor))
		b.WriteString("\n\n")
		used += h
	}

	out := strings.TrimRight(b.String(), "\n")
	if more := tl.hiddenBelow(used); more > 0 {
		out += "\n" + tl.theme.Hint.Render(fmt.Sprintf("  %d more below", more))
	}
	return out
}

func (tl *TaskList) hiddenBelow(usedRows int) int {
	shown, rows := 0, 0
	for i := tl.offset; i < len(tl.visible); i++ {
		rows += tl.itemHeight(tl.visible[i])
		if rows > usedRows {
			break
		}
		shown++
	}
	return len(tl.visible) - tl.offset - shown
}

// renderTask renders one task as checkbox, title, description and date.
func (tl *TaskList) renderTask(t model.Task, selected bool) string {
	textWidth := tl.width - 8
	if textWidth < 10 {
		textWidth = 10
	}

	check := tl.theme.CheckPending.Render(styles.CheckboxPending)
	title := tl.theme.TaskTitle.Render(util.Truncate(t.Title, textWidth))
	desc := tl.theme.TaskDescription
	if t.IsCompleted {
		check = tl.theme.CheckDone.Render(styles.CheckboxDone)
		title = tl.theme.TaskTitleDone.Render(util.Truncate(t.Title, textWidth))
		desc = tl.theme.TaskTitleDone
	}

	lines := []string{check + " " + title}
	if t.Description != "" {
		lines = append(lines, "    "+desc.Render(util.Truncate(util.FirstLine(t.Description), textWidth)))
	}
	lines = append(lines, "    "+tl.theme.TaskDate.Render(t.CreatedDate()))

	row := tl.theme.TaskRow
	if selected {
		row = tl.theme.TaskRowSelected
	}
	return row.Render(strings.Join(lines, "\n"))
}

// renderNoMatching renders the notice for a filter that hides everything.
func (tl *TaskList) renderNoMatching() string {
	msg := "No completed tasks yet"
	if tl.filter == model.FilterPending {
		msg = "Nothing pending. Nice work!"
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(tl.theme.EmptyText.Render(msg))
}
