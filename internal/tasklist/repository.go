package tasklist

import (
	"context"
	"fmt"

	"todo/internal/service"
)

// Repository is a stateless pass-through to the remote task operations.
// The credential is attached by the transport behind svc. It neither
// retries nor interprets errors.
type Repository struct {
	svc service.TaskService
}

// NewRepository wraps svc.
func NewRepository(svc service.TaskService) *Repository {
	return &Repository{svc: svc}
}

// List returns the current user's tasks in server order.
func (r *Repository) List(ctx context.Context) ([]service.Task, error) {
	tasks, err := r.svc.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create creates a task.
func (r *Repository) Create(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	task, err := r.svc.CreateTask(ctx, fields)
	if err != nil {
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update replaces the mutable fields of task id.
func (r *Repository) Update(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	task, err := r.svc.UpdateTask(ctx, id, fields)
	if err != nil {
		return service.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

// Remove deletes task id.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	if err := r.svc.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}
