// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types shared by the API client, the
// history store and the UI.
//
// # Key Types
//
//   - Task, TaskFilter, TaskStats: the user's to-do items and list helpers
//   - User: the authenticated account
//   - Conversation, Message, Role: chat threads with the task assistant
//   - Timestamp: JSON time that tolerates zone-less backend datetimes
//
// # Usage
//
//	tasks = model.SortTasks(model.FilterTasks(tasks, model.FilterPending))
//	fmt.Println(model.Stats(tasks))
//
//	conv := model.NewConversation()
//	msg := conv.AddUserMessage("Add a task to buy groceries")
package model
