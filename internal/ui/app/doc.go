// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the taskchat TUI.
//
// It owns three screens: sign in / sign up, the task dashboard and the chat
// assistant. Every protected action passes the session guard first; a
// failed guard or a 401 from the backend sends the user back to sign in.
// Backend calls run as tea.Cmd values bound to the model's context, which
// Close cancels.
package app
