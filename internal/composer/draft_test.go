// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SET TEXT
// =============================================================================

func TestDraft_SetText_AdoptsWithinLimit(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"exactly at limit", strings.Repeat("a", MaxLength)},
		{"multibyte counts runes", strings.Repeat("é", MaxLength)},
		{"newlines", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			ch := d.SetText(tt.candidate)

			assert.False(t, ch.Rejected)
			assert.Equal(t, tt.candidate, d.Text())
			assert.Equal(t, tt.candidate, ch.Text)
		})
	}
}

func TestDraft_SetText_RejectsOverLimit(t *testing.T) {
	d := NewDraft()
	d.SetText("keep me")

	ch := d.SetText(strings.Repeat("x", MaxLength+1))

	assert.True(t, ch.Rejected)
	assert.False(t, ch.Changed)
	assert.Equal(t, "keep me", d.Text())
}

func TestDraft_SetText_ClampsSelection(t *testing.T) {
	d := NewDraft()
	d.SetText("hello world")
	d.Select(Selection{Start: 6, End: 11})

	d.SetText("hi")

	assert.Equal(t, Selection{Start: 2, End: 2}, d.Selection())
}

func TestDraft_SetText_UnchangedIsNotAChange(t *testing.T) {
	d := NewDraft()
	d.SetText("same")

	ch := d.SetText("same")
	assert.False(t, ch.Changed)
}

// =============================================================================
// PASTE
// =============================================================================

func TestDraft_PasteAt_Scenario(t *testing.T) {
	d := newDraftWithLimit(10)
	d.SetText("hello")

	ch := d.PasteAt(Selection{Start: 2, End: 4}, "XYZ")

	assert.Equal(t, "heXYZo", d.Text())
	assert.False(t, ch.Truncated)
	assert.True(t, ch.Changed)
	assert.Equal(t, Caret(5), d.Selection())
}

func TestDraft_PasteAt_Boundary(t *testing.T) {
	tests := []struct {
		name          string
		pasted        string
		wantText      string
		wantTruncated bool
	}{
		{
			name:     "exactly available fills buffer",
			pasted:   "12345",
			wantText: "hello12345",
		},
		{
			name:          "available plus one loses one rune",
			pasted:        "123456",
			wantText:      "hello12345",
			wantTruncated: true,
		},
		{
			name:     "empty paste",
			pasted:   "",
			wantText: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraftWithLimit(10)
			d.SetText("hello")

			ch := d.PasteAt(Caret(5), tt.pasted)

			assert.Equal(t, tt.wantText, d.Text())
			assert.Equal(t, tt.wantTruncated, ch.Truncated)
			assert.LessOrEqual(t, d.Len(), 10)
		})
	}
}

func TestDraft_PasteAt_NoRoomIsNoop(t *testing.T) {
	d := newDraftWithLimit(5)
	d.SetText("hello")
	d.Select(Caret(2))

	ch := d.PasteAt(Caret(2), "abc")

	assert.False(t, ch.Changed)
	assert.Equal(t, "hello", d.Text())
	assert.Equal(t, Caret(2), d.Selection())
}

func TestDraft_PasteAt_FullReplacement(t *testing.T) {
	d := NewDraft()
	d.SetText("a much longer draft")

	d.PasteAt(Selection{Start: 0, End: d.Len()}, "short")

	assert.Equal(t, "short", d.Text())
}

func TestDraft_PasteAt_SelectionFreesSpace(t *testing.T) {
	d := newDraftWithLimit(10)
	d.SetText("0123456789")

	ch := d.PasteAt(Selection{Start: 2, End: 5}, "abcdef")

	assert.Equal(t, "01abc56789", d.Text())
	assert.True(t, ch.Truncated)
}

func TestDraft_PasteAt_ClampsBadSelection(t *testing.T) {
	d := newDraftWithLimit(20)
	d.SetText("hello")

	d.PasteAt(Selection{Start: 99, End: -3}, "!")

	assert.Equal(t, "!", d.Text())
}

func TestDraft_PasteAt_MultibyteTruncation(t *testing.T) {
	d := newDraftWithLimit(4)
	d.SetText("ab")
	d.Select(Caret(2))

	d.Paste("日本語")

	assert.Equal(t, "ab日本", d.Text())
}

func TestSplice_NeverExceedsLimit(t *testing.T) {
	const limit = 12
	texts := []string{"", "a", "hello", "0123456789ab"}
	pastes := []string{"", "x", "xyz", strings.Repeat("p", 30)}

	for _, text := range texts {
		n := len([]rune(text))
		for start := 0; start <= n; start++ {
			for end := start; end <= n; end++ {
				for _, p := range pastes {
					res := Splice(text, Selection{start, end}, p, limit)
					require.LessOrEqual(t, len([]rune(res.Text)), limit,
						"text=%q sel=[%d,%d) paste=%q", text, start, end, p)

					available := limit - (start + (n - end))
					if res.Applied && len([]rune(p)) <= available {
						runes := []rune(text)
						want := string(runes[:start]) + p + string(runes[end:])
						require.Equal(t, want, res.Text)
						require.False(t, res.Truncated)
					}
				}
			}
		}
	}
}

// =============================================================================
// CLEAR & FEEDBACK
// =============================================================================

func TestDraft_Clear(t *testing.T) {
	d := NewDraft()
	d.SetText("something")
	d.Select(Caret(4))

	ch := d.Clear()

	assert.True(t, ch.Changed)
	assert.True(t, d.IsEmpty())
	assert.Equal(t, Selection{}, d.Selection())
}

func TestFeedback_Thresholds(t *testing.T) {
	tests := []struct {
		length       int
		wantNear     bool
		wantCritical bool
		wantSeverity Severity
	}{
		{0, false, false, SeverityNone},
		{MaxLength - 100, false, false, SeverityNone},
		{MaxLength - 99, true, false, SeverityWarning},
		{MaxLength - 50, true, false, SeverityWarning},
		{MaxLength - 49, true, true, SeverityCritical},
		{MaxLength, true, true, SeverityCritical},
	}

	for _, tt := range tests {
		f := feedbackFor(MaxLength, tt.length)
		assert.Equal(t, MaxLength-tt.length, f.Remaining)
		assert.Equal(t, tt.wantNear, f.NearLimit, "length %d", tt.length)
		assert.Equal(t, tt.wantCritical, f.Critical, "length %d", tt.length)
		assert.Equal(t, tt.wantSeverity, f.Severity(), "length %d", tt.length)
	}
}
