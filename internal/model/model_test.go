// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// TASK TESTS
// =============================================================================

func day(n int) Timestamp {
	return Timestamp{time.Date(2025, 1, n, 12, 0, 0, 0, time.UTC)}
}

func sampleTasks() []Task {
	return []Task{
		{ID: 1, Title: "old done", IsCompleted: true, CreatedAt: day(1)},
		{ID: 2, Title: "old pending", CreatedAt: day(2)},
		{ID: 3, Title: "new pending", CreatedAt: day(5)},
		{ID: 4, Title: "new done", IsCompleted: true, CreatedAt: day(6)},
	}
}

func ids(tasks []Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestTask_UnmarshalBackendJSON(t *testing.T) {
	raw := `{"id":7,"title":"buy milk","description":null,"is_completed":false,
		"created_at":"2025-03-04T10:11:12.123456","updated_at":"2025-03-04T10:11:12Z"}`

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.ID != 7 || task.Title != "buy milk" || task.Description != "" {
		t.Errorf("unexpected task: %+v", task)
	}
	want := time.Date(2025, 3, 4, 10, 11, 12, 123456000, time.UTC)
	if !task.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, want)
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for invalid timestamp")
	}
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("null should decode to zero time, got %v, %v", ts, err)
	}
}

func TestStats(t *testing.T) {
	got := Stats(sampleTasks())
	want := TaskStats{Total: 4, Completed: 2, Pending: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	if s := (TaskStats{Total: 1, Pending: 1}).String(); !strings.HasPrefix(s, "1 task ") {
		t.Errorf("String() = %q", s)
	}
}

func TestFilterTasks(t *testing.T) {
	tests := []struct {
		filter TaskFilter
		want   []int
	}{
		{FilterAll, []int{1, 2, 3, 4}},
		{FilterPending, []int{2, 3}},
		{FilterCompleted, []int{1, 4}},
	}
	for _, tt := range tests {
		got := ids(FilterTasks(sampleTasks(), tt.filter))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("FilterTasks(%s) mismatch (-want +got):\n%s", tt.filter, diff)
		}
	}
}

func TestParseTaskFilter(t *testing.T) {
	for in, want := range map[string]TaskFilter{
		"": FilterAll, "ALL": FilterAll, "open": FilterPending, "done": FilterCompleted,
	} {
		got, err := ParseTaskFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseTaskFilter(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseTaskFilter("someday"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if FilterAll.Next().Next().Next() != FilterAll {
		t.Error("Next should cycle back to all")
	}
}

func TestSortTasks_PendingFirstNewestFirst(t *testing.T) {
	input := sampleTasks()
	got := ids(SortTasks(input))

	if diff := cmp.Diff([]int{3, 2, 4, 1}, got); diff != "" {
		t.Errorf("SortTasks mismatch (-want +got):\n%s", diff)
	}
	if input[0].ID != 1 {
		t.Error("SortTasks modified its input")
	}
}

func TestUpsertAndRemoveTask(t *testing.T) {
	tasks := sampleTasks()

	tasks = UpsertTask(tasks, Task{ID: 2, Title: "renamed"})
	if got, _ := FindTask(tasks, 2); got.Title != "renamed" {
		t.Errorf("UpsertTask did not replace: %+v", got)
	}

	tasks = UpsertTask(tasks, Task{ID: 9, Title: "new"})
	if len(tasks) != 5 {
		t.Fatalf("UpsertTask did not append, len=%d", len(tasks))
	}

	tasks = RemoveTask(tasks, 1)
	if _, ok := FindTask(tasks, 1); ok {
		t.Error("RemoveTask left the task behind")
	}
}

func TestSanitize(t *testing.T) {
	// "e" + combining acute composes to a single rune.
	if got := SanitizeTitle("  Cafe\u0301\tmenu\n plan \x07"); got != "Caf\u00e9 menu plan" {
		t.Errorf("SanitizeTitle = %q", got)
	}
	if got := SanitizeDescription("line one\r\n\tline two\x00 "); got != "line one\n\tline two" {
		t.Errorf("SanitizeDescription = %q", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_Flow(t *testing.T) {
	conv := NewConversation()
	if !conv.IsEmpty() {
		t.Fatal("new conversation should be empty")
	}

	user := conv.AddUserMessage("Add a task to buy groceries\nand eggs")
	if !user.Pending || !conv.HasPending() {
		t.Error("user message should be pending")
	}
	if conv.Title != "Add a task to buy groceries" {
		t.Errorf("Title = %q", conv.Title)
	}

	reply := conv.AddAssistantMessage("Done!", []ToolCall{{Tool: "add_task"}})
	if user.Pending || conv.HasPending() {
		t.Error("reply should settle pending messages")
	}
	if !reply.ChangedTasks() {
		t.Error("add_task should count as a task change")
	}
	if conv.LastMessage() != reply || conv.MessageCount() != 2 {
		t.Error("reply should be the last message")
	}
}

func TestConversation_MarkFailed(t *testing.T) {
	conv := NewConversation()
	msg := conv.AddUserMessage("hi")

	if !conv.MarkFailed(msg.ID, "offline") {
		t.Fatal("MarkFailed returned false for known message")
	}
	if !msg.Failed || msg.Pending || msg.Error != "offline" {
		t.Errorf("unexpected message state: %+v", msg)
	}
	if conv.MarkFailed("missing", "x") {
		t.Error("MarkFailed returned true for unknown message")
	}
}

func TestConversation_Prunes(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddSystemMessage("note")
	}
	if conv.MessageCount() != MaxMessages {
		t.Errorf("MessageCount = %d, want %d", conv.MessageCount(), MaxMessages)
	}
}

func TestMessage_ChangedTasks_ReadOnlyTools(t *testing.T) {
	msg := NewMessage(RoleAssistant, "here you go")
	msg.ToolCalls = []ToolCall{{Tool: "list_tasks"}}
	if msg.ChangedTasks() {
		t.Error("list_tasks should not count as a change")
	}
}
