// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

// Sender receives each accepted message exactly once. The draft is reset as
// soon as it returns and the composer does not track the send's outcome.
type Sender func(message string)

// Composer ties a Draft to the submission gate and a Sender.
type Composer struct {
	draft *Draft
	send  Sender
}

// New creates a composer with an empty draft. send may be nil, in which case
// Submit only gates and resets.
func New(send Sender) *Composer {
	return &Composer{
		draft: NewDraft(),
		send:  send,
	}
}

// Draft returns the composer's draft.
func (c *Composer) Draft() *Draft {
	return c.draft
}

// Text returns the draft text.
func (c *Composer) Text() string {
	return c.draft.Text()
}

// SetText applies a typed edit. See Draft.SetText.
func (c *Composer) SetText(candidate string) Change {
	return c.draft.SetText(candidate)
}

// PasteAt applies a paste over sel. See Draft.PasteAt.
func (c *Composer) PasteAt(sel Selection, pasted string) Change {
	return c.draft.PasteAt(sel, pasted)
}

// Paste applies a paste at the current selection.
func (c *Composer) Paste(pasted string) Change {
	return c.draft.Paste(pasted)
}

// Select moves the caret or selection.
func (c *Composer) Select(sel Selection) {
	c.draft.Select(sel)
}

// Clear empties the draft.
func (c *Composer) Clear() Change {
	return c.draft.Clear()
}

// Feedback returns the counter state.
func (c *Composer) Feedback() Feedback {
	return c.draft.Feedback()
}

// CanSubmit reports whether Submit would currently dispatch.
func (c *Composer) CanSubmit(disabled bool) bool {
	return CanSubmit(c.draft.Text(), disabled)
}

// Submit runs the gate over the draft. On success the trimmed text goes to
// the Sender, the draft is reset and the text is returned with true.
// Blank drafts and disabled submits are silent no-ops.
func (c *Composer) Submit(disabled bool) (string, bool) {
	msg, ok := TrySubmit(c.draft.Text(), disabled)
	if !ok {
		return "", false
	}

	if c.send != nil {
		c.send(msg)
	}

	c.draft.Clear()
	return msg, true
}
