// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"
	"unicode"
)

// =============================================================================
// SUBMISSION GATE
// =============================================================================

// GateState is the composer's submission state. It is imposed by the caller
// through the disabled flag; the composer never enters Disabled on its own.
type GateState int

const (
	// Idle accepts submissions of non-blank text.
	Idle GateState = iota
	// Disabled refuses every submission.
	Disabled
)

// String returns the state name.
func (s GateState) String() string {
	if s == Disabled {
		return "disabled"
	}
	return "idle"
}

// StateFor maps the caller's disabled flag to a GateState.
func StateFor(disabled bool) GateState {
	if disabled {
		return Disabled
	}
	return Idle
}

// TrySubmit returns the trimmed text and true when it may be dispatched:
// the trimmed text is non-empty and sending is not disabled. Otherwise it
// returns "" and false with no side effect.
func TrySubmit(text string, disabled bool) (string, bool) {
	if StateFor(disabled) == Disabled {
		return "", false
	}
	trimmed := strings.TrimFunc(text, isTrimmable)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// isTrimmable matches whitespace plus the byte order mark, which editors and
// clipboards leave at the start of pasted text.
func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// CanSubmit reports whether TrySubmit would accept text. Used to render the
// send control enabled or disabled.
func CanSubmit(text string, disabled bool) bool {
	_, ok := TrySubmit(text, disabled)
	return ok
}
