// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer implements the bounded message composer used by the chat
// screen and the line-mode chat command.
//
// The composer owns a single Draft: the unsent message text plus the caret or
// selection over it. Every mutation path keeps the draft within MaxLength
// runes:
//
//   - SetText adopts typed edits verbatim, or rejects them outright when they
//     would exceed the limit.
//   - PasteAt splices pasted text into the selection, cutting the pasted text
//     down to the space that is left instead of rejecting it.
//   - Clear empties the draft.
//
// # Submission
//
// TrySubmit is the submission gate. It hands back the trimmed draft only when
// it is non-empty and the caller has not disabled sending. Composer.Submit
// runs the gate over its draft, passes the result to the Sender exactly once
// and resets the draft immediately, without waiting for the send to finish.
//
// # Feedback
//
// Feedback derives the remaining-character counter and the near-limit and
// critical flags from the draft length. It never blocks submission.
//
// # Usage
//
//	c := composer.New(func(msg string) { outbox <- msg })
//	c.SetText("  buy milk  ")
//	if msg, ok := c.Submit(sending); ok {
//	    log.Printf("sent %q", msg) // "buy milk"
//	}
//
// Nothing in this package performs I/O. Mutations return a Change describing
// what happened, and the UI layer applies layout and focus side effects after
// inspecting it.
package composer
