// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrySubmit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		disabled bool
		want     string
		wantOK   bool
	}{
		{"whitespace only", "   ", false, "", false},
		{"empty", "", false, "", false},
		{"trimmed", "  buy milk  ", false, "buy milk", true},
		{"newlines trimmed", "\n\tcall mom\n", false, "call mom", true},
		{"disabled with text", "buy milk", true, "", false},
		{"disabled blank", "  ", true, "", false},
		{"byte order mark only", "\uFEFF \uFEFF", false, "", false},
		{"byte order mark trimmed", "\uFEFFhello\u00a0", false, "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TrySubmit(tt.text, tt.disabled)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComposer_SubmitSendsOnceAndResets(t *testing.T) {
	var sent []string
	c := New(func(msg string) { sent = append(sent, msg) })

	c.SetText("  buy milk  ")
	msg, ok := c.Submit(false)

	assert.True(t, ok)
	assert.Equal(t, "buy milk", msg)
	assert.Equal(t, []string{"buy milk"}, sent)
	assert.Equal(t, "", c.Text())

	// Immediately submitting again finds an empty draft.
	_, ok = c.Submit(false)
	assert.False(t, ok)
	assert.Len(t, sent, 1)
}

func TestComposer_SubmitDisabledKeepsDraft(t *testing.T) {
	called := false
	c := New(func(string) { called = true })
	c.SetText("hold on")

	_, ok := c.Submit(true)

	assert.False(t, ok)
	assert.False(t, called)
	assert.Equal(t, "hold on", c.Text())
}

func TestComposer_SubmitBlankIsNoop(t *testing.T) {
	called := false
	c := New(func(string) { called = true })
	c.SetText(" \n ")

	_, ok := c.Submit(false)

	assert.False(t, ok)
	assert.False(t, called)
	assert.Equal(t, " \n ", c.Text())
}

func TestComposer_NilSender(t *testing.T) {
	c := New(nil)
	c.SetText("x")

	msg, ok := c.Submit(false)
	assert.True(t, ok)
	assert.Equal(t, "x", msg)
	assert.Equal(t, "", c.Text())
}

func TestComposer_SenderSeesTrimmedTextBeforeReset(t *testing.T) {
	var c *Composer
	var draftDuringSend string
	c = New(func(msg string) { draftDuringSend = c.Text() })

	c.Paste("  ship it\n")
	_, ok := c.Submit(false)

	assert.True(t, ok)
	assert.Equal(t, "  ship it\n", draftDuringSend)
	assert.Empty(t, c.Text())
	assert.Equal(t, Selection{}, c.Draft().Selection())
}

func TestComposer_CanSubmit(t *testing.T) {
	c := New(nil)
	assert.False(t, c.CanSubmit(false))

	c.SetText("go")
	assert.True(t, c.CanSubmit(false))
	assert.False(t, c.CanSubmit(true))
}

func TestGateState(t *testing.T) {
	assert.Equal(t, Idle, StateFor(false))
	assert.Equal(t, Disabled, StateFor(true))
	assert.Equal(t, "disabled", Disabled.String())
	assert.Equal(t, "idle", Idle.String())
}
