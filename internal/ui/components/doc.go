// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable Bubble Tea widgets of the
// taskchat TUI: the chat composer, task list, forms, dialogs, toasts,
// message bubbles and the spinner.
//
// Components are pointer types with Update(msg) (*T, tea.Cmd) and View()
// methods and talk back to the app through plain tea.Msg values such as
// SubmitMsg, FormSubmitMsg, ConfirmMsg and ToastAddMsg.
package components
