// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across taskchat.
//
// # Key Functions
//
// Display:
//   - Truncate, Width, PadRight: column-aware string fitting (go-runewidth)
//   - FirstLine: single-line previews of multi-line text
//   - NormalizeNewlines: CRLF to LF for pasted text
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: "~/" expansion for configured paths
//
// # Usage
//
//	title := util.Truncate(task.Title, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
