// Package service defines the backend-agnostic contract of the remote task service.
package service

import "context"

// AuthService covers the account endpoints.
// Calls other than Register and Login carry the current credential,
// which the implementation obtains from its transport, never from the caller.
type AuthService interface {
	// Register creates an account and returns its credential.
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)

	// Login exchanges username and password for a credential.
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)

	// Logout invalidates the current credential on the server.
	Logout(ctx context.Context) error

	// Me returns the user the current credential belongs to.
	Me(ctx context.Context) (User, error)
}

// TaskService covers the task endpoints, scoped to the current credential.
type TaskService interface {
	// ListTasks returns all tasks in server order (no client-side sorting).
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task; the server assigns the ID.
	CreateTask(ctx context.Context, fields TaskFields) (Task, error)

	// UpdateTask replaces the mutable fields of a task.
	UpdateTask(ctx context.Context, id int64, fields TaskFields) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}

// Service is the full remote contract.
type Service interface {
	AuthService
	TaskService
}
