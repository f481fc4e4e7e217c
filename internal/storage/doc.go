// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps local chat history in a SQLite database.
//
// The backend owns tasks; chat history is kept locally so past
// conversations can be reviewed offline and resumed with their backend
// conversation id.
//
// # Key Types
//
//   - History: the history database (~/.taskchat/history.db)
//   - Summary: one row of a conversation listing
//
// # Usage
//
//	h, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	err = h.SaveMessage(ctx, conv, msg)
//	summaries, err := h.ListConversations(ctx, 20)
package storage
