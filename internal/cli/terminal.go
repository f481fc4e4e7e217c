// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strconv"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool {
	return isTerminal(os.Stdin)
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return isTerminal(os.Stdout)
}

// RequireTerminal fails with a TTYRequiredError unless both stdin and stdout
// are terminals. The full-screen interface needs both.
func RequireTerminal(operation string) error {
	if IsTTY() && IsStdoutTTY() {
		return nil
	}
	return &TTYRequiredError{Operation: operation}
}

// defaultWidth is used when stdout is not a terminal and COLUMNS is unset.
const defaultWidth = 80

// GetTerminalWidth returns the stdout width. Piped output falls back to
// $COLUMNS and then to 80 columns. Never less than 40.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
		if cols, convErr := strconv.Atoi(os.Getenv("COLUMNS")); convErr == nil && cols > 0 {
			width = cols
		}
	}
	return max(width, 40)
}

// =============================================================================
// COLOR
// =============================================================================

// ColorsEnabled reports whether styled output should be written to stdout.
// NO_COLOR wins, then FORCE_COLOR, then TERM=dumb, then TTY detection.
func ColorsEnabled() bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("FORCE_COLOR") != "":
		return true
	case os.Getenv("TERM") == "dumb":
		return false
	}
	return IsStdoutTTY()
}

// GetColorProfile returns the lipgloss profile for CLI output.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// PROMPTS
// =============================================================================

// CanPrompt reports whether questions can be asked: answers come from a
// terminal on stdin and the prompt is visible on stderr.
func CanPrompt() bool {
	return IsTTY() && isTerminal(os.Stderr)
}

// TTYRequiredError is returned when an operation needs a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "this command needs an interactive terminal"
	}
	return e.Operation + " needs an interactive terminal"
}
