// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and user-facing error formatting for architect.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/architect-tui/internal/gemini"
	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitQuotaError indicates the generation quota was exhausted
	ExitQuotaError = 6
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// COMMAND ERRORS
// =============================================================================

// CommandError carries an exit code and a hint alongside the error message.
type CommandError struct {
	Message string
	Hint    string
	Code    int
	Cause   error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// NewUsageError creates an error for invalid command usage.
func NewUsageError(message string) *CommandError {
	return &CommandError{
		Message: message,
		Hint:    "Run 'architect help' for usage",
		Code:    ExitUsageError,
	}
}

// WrapError classifies err into a CommandError with a matching exit code
// and a hint the user can act on.
func WrapError(err error) *CommandError {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}

	switch {
	case gemini.IsUnauthorized(err):
		return &CommandError{
			Message: "API key rejected",
			Hint:    "Run 'architect config set-key' or set ARCHITECT_API_KEY",
			Code:    ExitAuthError,
			Cause:   err,
		}
	case gemini.IsRateLimited(err):
		return &CommandError{
			Message: "Rate limited by the API",
			Hint:    "Wait a minute and try again, or lower api.requests_per_minute",
			Code:    ExitNetworkError,
			Cause:   err,
		}
	case gemini.IsBlocked(err):
		return &CommandError{
			Message: "The request was blocked by content safety filters",
			Hint:    "Rephrase the prompt and try again",
			Code:    ExitGeneralError,
			Cause:   err,
		}
	case gemini.IsTimeout(err):
		return &CommandError{
			Message: "The API request timed out",
			Hint:    "Check connectivity or raise api.timeout_seconds",
			Code:    ExitNetworkError,
			Cause:   err,
		}
	case errors.Is(err, storage.ErrNotFound):
		return &CommandError{
			Message: "No matching history entry",
			Hint:    "Run 'architect history list' to see available IDs",
			Code:    ExitNotFoundError,
			Cause:   err,
		}
	default:
		return &CommandError{
			Message: err.Error(),
			Code:    ExitGeneralError,
			Cause:   err,
		}
	}
}

// PrintError writes a formatted error to stderr and returns its exit code.
func PrintError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	cmdErr := WrapError(err)
	fmt.Fprintln(os.Stderr, RenderConditional(ErrorStyle, "Error: "+cmdErr.Message))
	if cmdErr.Hint != "" {
		fmt.Fprintln(os.Stderr, RenderConditional(DimStyle, "  "+cmdErr.Hint))
	}
	return cmdErr.Code
}
