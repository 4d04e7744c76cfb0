package cli

import (
	"errors"
	"net/http"

	"github.com/thenoetrevino/pasosync/internal/apiclient"
	"github.com/thenoetrevino/pasosync/internal/models"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: network errors, server errors, unexpected failures.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	ExitUsage = 2

	// ExitNotFound indicates a requested project or task was not found.
	ExitNotFound = 3

	// ExitConflict indicates the id is already taken.
	ExitConflict = 4

	// ExitValidation indicates the server rejected the input.
	ExitValidation = 5
)

// ExitCodeFor maps a command error onto an exit code
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, models.ErrConflict):
		return ExitConflict
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		return ExitValidation
	}
	return ExitError
}

// ErrorCode is the machine-readable code printed in JSON error output
func ErrorCode(err error) string {
	switch ExitCodeFor(err) {
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitConflict:
		return "CONFLICT"
	case ExitValidation:
		return "VALIDATION_ERROR"
	}
	return "ERROR"
}
