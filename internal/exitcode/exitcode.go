// Package exitcode defines exit codes for the CLI and maps errors onto them.
package exitcode

import (
	"errors"

	"todo/internal/session"
	"todo/internal/tasklist"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid draft, out of range).
	UserError = 1

	// AuthError indicates no session, a rejected login, or a config error.
	AuthError = 2

	// BackendError indicates a remote/network error.
	BackendError = 3
)

// For returns the exit code for an error from the core.
func For(err error) int {
	var authErr *session.AuthError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, tasklist.ErrTitleRequired), errors.Is(err, tasklist.ErrInvalidDueDate):
		return UserError
	case errors.Is(err, session.ErrNotAuthenticated), errors.As(err, &authErr):
		return AuthError
	default:
		return BackendError
	}
}
