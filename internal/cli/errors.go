// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/storage"
)

// Commands always return errors; main decides how to show them.

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError is returned for invalid arguments.
	ExitUsageError = 2
	// ExitConfigError is returned for unreadable or invalid configuration.
	ExitConfigError = 3
	// ExitAuthError is returned when the user must log in (again).
	ExitAuthError = 4
	// ExitNetworkError is returned when the backend cannot be reached.
	ExitNetworkError = 5
	// ExitNotFoundError is returned for missing tasks and conversations.
	ExitNotFoundError = 7
	// ExitTimeoutError is returned when a request timed out.
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is bad user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewValidationError creates a validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{
		Field:   argName,
		Reason:  "argument is required",
		Example: usage,
	}
}

// errConfirmRequired is returned by destructive commands run without
// --confirm and without a terminal to ask on.
func errConfirmRequired(usage string) error {
	return &ValidationError{
		Field:   "confirmation",
		Reason:  "pass --confirm to proceed",
		Example: usage,
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// Message returns the text shown to the user for err. Backend errors use
// their detail; guard failures carry a login hint.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case auth.IsAuthError(err):
		return auth.GuardMessage(err) + " Run 'taskchat login'."
	}

	var apiErr *api.APIError
	var cmdErr *CommandError
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, api.ErrUnavailable),
		errors.Is(err, api.ErrRateLimited):
		msg := api.UserMessage(err)
		if errors.As(err, &cmdErr) {
			return fmt.Sprintf("%s %s failed: %s", cmdErr.Command, cmdErr.Action, msg)
		}
		return msg
	}
	return err.Error()
}

// DisplayError writes err to w as "[Error] ..." or, in JSON mode, as a
// JSON error object.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		data, _ := json.MarshalIndent(map[string]any{
			"success": false,
			"error":   Message(err),
			"code":    GetExitCode(err),
		}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("[Error]")+" "+Message(err))
}

// HandleErrorAndExit displays err on stderr and exits with its code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	out := io.Writer(os.Stderr)
	if jsonMode {
		out = os.Stdout
	}
	DisplayError(out, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps err onto an exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var configErrs config.ValidateErrors
	var ttyErr *TTYRequiredError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &ttyErr):
		return ExitUsageError
	case errors.As(err, &configErrs):
		return ExitConfigError
	case auth.IsAuthError(err):
		return ExitAuthError
	case errors.Is(err, api.ErrNotFound), errors.Is(err, storage.ErrConversationNotFound):
		return ExitNotFoundError
	case errors.Is(err, api.ErrInvalidInput), errors.Is(err, api.ErrMessageTooLong):
		return ExitUsageError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, api.ErrUnavailable):
		return ExitNetworkError
	}
	return ExitGeneralError
}
