// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

// =============================================================================
// LIMITS
// =============================================================================

// MaxLength is the maximum draft length in runes. The buffer bound, the paste
// arithmetic and the counter display all read this one constant.
const MaxLength = 1000

// =============================================================================
// SELECTION
// =============================================================================

// Selection is a half-open rune range [Start, End) over the draft text.
// Start == End is a plain caret.
type Selection struct {
	Start int
	End   int
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

// Len returns the number of runes covered by the selection.
func (s Selection) Len() int {
	return s.End - s.Start
}

// Clamp returns the selection forced into [0, n] with Start <= End.
func (s Selection) Clamp(n int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = clampInt(s.Start, 0, n)
	s.End = clampInt(s.End, 0, n)
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Change describes the outcome of a draft mutation. The UI layer inspects it
// to decide whether to resize, refocus or redraw.
type Change struct {
	// Text is the draft text after the mutation.
	Text string
	// Selection is the caret or selection after the mutation.
	Selection Selection
	// Changed is true when the draft text differs from before.
	Changed bool
	// Rejected is true when a typed edit was refused for exceeding MaxLength.
	Rejected bool
	// Truncated is true when pasted text was cut to fit.
	Truncated bool
}

// =============================================================================
// DRAFT
// =============================================================================

// Draft is the in-progress, unsent message text and its selection.
// The zero value is not usable; call NewDraft.
type Draft struct {
	text  []rune
	sel   Selection
	limit int
}

// NewDraft creates an empty draft bounded by MaxLength.
func NewDraft() *Draft {
	return newDraftWithLimit(MaxLength)
}

func newDraftWithLimit(limit int) *Draft {
	return &Draft{limit: limit}
}

// Text returns the draft text.
func (d *Draft) Text() string {
	return string(d.text)
}

// Len returns the draft length in runes.
func (d *Draft) Len() int {
	return len(d.text)
}

// Limit returns the maximum draft length in runes.
func (d *Draft) Limit() int {
	return d.limit
}

// IsEmpty reports whether the draft holds no text at all.
func (d *Draft) IsEmpty() bool {
	return len(d.text) == 0
}

// Selection returns the current caret or selection.
func (d *Draft) Selection() Selection {
	return d.sel
}

// Select moves the caret or selection, clamped to the current text.
func (d *Draft) Select(sel Selection) {
	d.sel = sel.Clamp(len(d.text))
}

// SetText adopts candidate when it fits within the limit. Over-long candidates
// are rejected and leave the draft untouched. The selection is clamped to the
// new text.
func (d *Draft) SetText(candidate string) Change {
	runes := []rune(candidate)
	if len(runes) > d.limit {
		return d.change(false, true, false)
	}

	changed := string(runes) != string(d.text)
	d.text = runes
	d.sel = d.sel.Clamp(len(d.text))
	return d.change(changed, false, false)
}

// PasteAt splices pasted into sel. When the result would exceed the limit the
// pasted text is cut down to the space that remains; when no space remains the
// paste is a no-op. The caret lands after the inserted text.
func (d *Draft) PasteAt(sel Selection, pasted string) Change {
	res := Splice(d.Text(), sel, pasted, d.limit)
	if !res.Applied {
		return d.change(false, false, false)
	}

	changed := res.Text != d.Text()
	d.text = []rune(res.Text)
	d.sel = res.Selection
	return d.change(changed, false, res.Truncated)
}

// Paste splices pasted into the current selection.
func (d *Draft) Paste(pasted string) Change {
	return d.PasteAt(d.sel, pasted)
}

// Clear empties the draft.
func (d *Draft) Clear() Change {
	changed := len(d.text) > 0
	d.text = d.text[:0]
	d.sel = Selection{}
	return d.change(changed, false, false)
}

// Feedback returns the counter state for the current text.
func (d *Draft) Feedback() Feedback {
	return feedbackFor(d.limit, len(d.text))
}

func (d *Draft) change(changed, rejected, truncated bool) Change {
	return Change{
		Text:      d.Text(),
		Selection: d.sel,
		Changed:   changed,
		Rejected:  rejected,
		Truncated: truncated,
	}
}

// =============================================================================
// BOUNDED SPLICE
// =============================================================================

// SpliceResult is the outcome of Splice.
type SpliceResult struct {
	Text      string
	Selection Selection
	// Applied is false when there was no room at all and nothing changed.
	Applied   bool
	Truncated bool
}

// Splice replaces sel in text with pasted, never producing more than limit
// runes. With prefix = text[:Start] and suffix = text[End:], the space left is
// limit - (len(prefix) + len(suffix)); a non-positive space makes the paste a
// no-op, otherwise pasted is cut to that many runes.
func Splice(text string, sel Selection, pasted string, limit int) SpliceResult {
	runes := []rune(text)
	sel = sel.Clamp(len(runes))

	prefix := runes[:sel.Start]
	suffix := runes[sel.End:]

	available := limit - (len(prefix) + len(suffix))
	if available <= 0 {
		return SpliceResult{Text: text, Selection: sel}
	}

	insert := []rune(pasted)
	truncated := false
	if len(insert) > available {
		insert = insert[:available]
		truncated = true
	}

	out := make([]rune, 0, len(prefix)+len(insert)+len(suffix))
	out = append(out, prefix...)
	out = append(out, insert...)
	out = append(out, suffix...)

	return SpliceResult{
		Text:      string(out),
		Selection: Caret(len(prefix) + len(insert)),
		Applied:   true,
		Truncated: truncated,
	}
}
