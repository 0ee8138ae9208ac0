package tasklist

import (
	"errors"
	"strings"

	"todo/internal/service"
)

var (
	// ErrTitleRequired rejects a draft with a blank title.
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidDueDate rejects a due date that is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
)

// Draft is the locally staged copy of a task's editable fields.
// DueDate holds the text as entered; "" means no due date.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	IsCompleted bool
}

// DraftFrom copies the editable fields of task.
func DraftFrom(task service.Task) Draft {
	d := Draft{
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
	}
	if task.DueDate != nil {
		d.DueDate = task.DueDate.String()
	}
	return d
}

// Empty reports whether d equals the empty default draft.
func (d Draft) Empty() bool {
	return d == Draft{}
}

// Fields validates the draft and returns the payload to send.
// An empty due date becomes an absent one, never an empty string.
func (d Draft) Fields() (service.TaskFields, error) {
	if strings.TrimSpace(d.Title) == "" {
		return service.TaskFields{}, ErrTitleRequired
	}

	fields := service.TaskFields{
		Title:       d.Title,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
	}
	if due := strings.TrimSpace(d.DueDate); due != "" {
		date, err := service.ParseDate(due)
		if err != nil {
			return service.TaskFields{}, ErrInvalidDueDate
		}
		fields.DueDate = &date
	}
	return fields, nil
}
