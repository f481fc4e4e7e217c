// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// Field limits enforced by the backend.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// =============================================================================
// TIMESTAMP
// =============================================================================

// naiveLayout is the ISO-8601 form the backend emits for naive datetimes.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that also accepts timestamps without a zone
// offset, which are read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

// =============================================================================
// USER
// =============================================================================

// User is the authenticated account.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

// =============================================================================
// TASK
// =============================================================================

// Task is a single to-do item owned by the current user.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// CreatedDate formats the creation date the way the dashboard shows it.
func (t Task) CreatedDate() string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Local().Format("Jan 2, 2006")
}

// Status returns "done" or "pending".
func (t Task) Status() string {
	if t.IsCompleted {
		return "done"
	}
	return "pending"
}

// TaskFilter selects which tasks a listing shows.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter accepts all, pending/open, completed/done. Empty is all.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "pending", "open":
		return FilterPending, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return FilterAll, fmt.Errorf("unknown task filter %q (use all, pending or completed)", s)
	}
}

// Next cycles all -> pending -> completed -> all.
func (f TaskFilter) Next() TaskFilter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Match reports whether the task passes the filter.
func (f TaskFilter) Match(t Task) bool {
	switch f {
	case FilterPending:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	default:
		return true
	}
}

// TaskStats summarises a task list.
type TaskStats struct {
	Total     int
	Completed int
	Pending   int
}

// String renders e.g. "3 tasks · 1 done · 2 pending".
func (s TaskStats) String() string {
	noun := "tasks"
	if s.Total == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s · %d done · %d pending", s.Total, noun, s.Completed, s.Pending)
}

// Stats counts tasks by completion.
func Stats(tasks []Task) TaskStats {
	completed := lo.CountBy(tasks, func(t Task) bool { return t.IsCompleted })
	return TaskStats{
		Total:     len(tasks),
		Completed: completed,
		Pending:   len(tasks) - completed,
	}
}

// FilterTasks returns the tasks matching f.
func FilterTasks(tasks []Task, f TaskFilter) []Task {
	return lo.Filter(tasks, func(t Task, _ int) bool { return f.Match(t) })
}

// SortTasks orders tasks pending first, then newest first, then by ID
// descending. The input slice is not modified.
func SortTasks(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if !a.CreatedAt.Equal(b.CreatedAt.Time) {
			return a.CreatedAt.After(b.CreatedAt.Time)
		}
		return a.ID > b.ID
	})
	return sorted
}

// FindTask returns the task with the given ID.
func FindTask(tasks []Task, id int) (Task, bool) {
	return lo.Find(tasks, func(t Task) bool { return t.ID == id })
}

// UpsertTask replaces the task with the same ID or appends it.
func UpsertTask(tasks []Task, updated Task) []Task {
	_, idx, found := lo.FindIndexOf(tasks, func(t Task) bool { return t.ID == updated.ID })
	if !found {
		return append(tasks, updated)
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	out[idx] = updated
	return out
}

// RemoveTask drops the task with the given ID.
func RemoveTask(tasks []Task, id int) []Task {
	return lo.Reject(tasks, func(t Task, _ int) bool { return t.ID == id })
}

// =============================================================================
// SANITIZING
// =============================================================================

// SanitizeTitle normalizes a title to NFC, joins it onto one line, strips
// control characters and trims surrounding space.
func SanitizeTitle(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(stripControl(s, false)), " ")
	return s
}

// SanitizeDescription normalizes a description to NFC and strips control
// characters other than newlines and tabs.
func SanitizeDescription(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(stripControl(s, true))
}

func stripControl(s string, keepLayout bool) string {
	return strings.Map(func(r rune) rune {
		if keepLayout && (r == '\n' || r == '\t') {
			return r
		}
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
