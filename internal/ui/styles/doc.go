// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the taskchat TUI.
//
// Colors are lipgloss.AdaptiveColor values so one palette serves light and
// dark terminals. Theme bundles the styles every screen and component uses.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	theme.SetSize(msg.Width, msg.Height)
//	title := theme.TaskTitle.Render(task.Title)
package styles
