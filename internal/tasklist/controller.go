// Package tasklist keeps the client's copy of the task collection in step
// with the remote service and stages edits in a draft.
package tasklist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"todo/internal/logging"
	"todo/internal/service"
)

// Messages placed in the error slot. The underlying cause is logged, not shown.
const (
	FetchFailed  = "Unable to fetch tasks."
	SaveFailed   = "Unable to save task."
	DeleteFailed = "Unable to delete task."
)

// Error is a failed task operation. Message is the text shown to the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// State is a snapshot of the controller for rendering.
type State struct {
	Tasks []service.Task
	Draft Draft

	// EditTarget is the ID of the task the draft edits; 0 when creating.
	EditTarget int64

	Loading bool
	Err     string
}

// Editing reports whether the draft targets an existing task.
func (s State) Editing() bool {
	return s.EditTarget != 0
}

// Controller owns the task collection, the draft and the loading and error
// flags. All mutations go through the Repository, and every successful save
// is followed by a full refresh. The exception is Delete, which removes the
// task locally instead of refetching.
//
// Overlapping refreshes are not sequenced: whichever completes last decides
// the collection. Completions of requests started before Reset are dropped.
type Controller struct {
	repo *Repository
	log  *zap.Logger

	mu         sync.Mutex
	tasks      []service.Task
	draft      Draft
	editTarget int64
	inflight   int
	errMsg     string
	epoch      uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates an empty controller.
func NewController(repo *Repository, opts ...Option) *Controller {
	c := &Controller{repo: repo}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrNop(c.log).Named("tasklist")
	return c
}

// State returns a snapshot safe to read while operations are in flight.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := make([]service.Task, len(c.tasks))
	copy(tasks, c.tasks)
	return State{
		Tasks:      tasks,
		Draft:      c.draft,
		EditTarget: c.editTarget,
		Loading:    c.inflight > 0,
		Err:        c.errMsg,
	}
}

// Refresh replaces the whole collection with the server's list.
// On failure the collection is kept and FetchFailed is shown.
// Loading is cleared however the call ends.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	epoch := c.epoch
	c.inflight++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.epoch == epoch {
			c.inflight--
		}
		c.mu.Unlock()
	}()

	tasks, err := c.repo.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.log.Debug("dropping stale refresh")
		return nil
	}
	if err != nil {
		c.log.Debug("refresh failed", zap.Error(err))
		c.errMsg = FetchFailed
		return &Error{Message: FetchFailed, Err: err}
	}
	c.tasks = tasks
	return nil
}

// SubmitDraft saves the draft: an update when an edit target is set, a
// create otherwise. On success the draft and edit target are reset and the
// collection is refreshed once. On failure the draft is kept for a retry.
// An invalid draft is rejected without a remote call.
func (c *Controller) SubmitDraft(ctx context.Context) error {
	c.mu.Lock()
	c.errMsg = ""
	draft, target, epoch := c.draft, c.editTarget, c.epoch
	c.mu.Unlock()

	fields, err := draft.Fields()
	if err != nil {
		c.setErr(epoch, err.Error())
		return &Error{Message: err.Error(), Err: err}
	}

	if target != 0 {
		_, err = c.repo.Update(ctx, target, fields)
	} else {
		_, err = c.repo.Create(ctx, fields)
	}
	if err != nil {
		c.log.Debug("save failed", zap.Int64("task_id", target), zap.Error(err))
		c.setErr(epoch, SaveFailed)
		return &Error{Message: SaveFailed, Err: err}
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}
	c.draft = Draft{}
	c.editTarget = 0
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// BeginEdit loads task into the draft and targets it.
// Any unsaved draft is overwritten.
func (c *Controller) BeginEdit(task service.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = DraftFrom(task)
	c.editTarget = task.ID
}

// CancelEdit clears the edit target and resets the draft.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	c.editTarget = 0
}

// EditDraft applies fn to the draft.
func (c *Controller) EditDraft(fn func(d *Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

// Delete removes task id on the server and, on success, from the local
// collection without refetching. On failure the collection is unchanged.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.errMsg = ""
	epoch := c.epoch
	c.mu.Unlock()

	err := c.repo.Remove(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	if err != nil {
		c.log.Debug("delete failed", zap.Int64("task_id", id), zap.Error(err))
		c.errMsg = DeleteFailed
		return &Error{Message: DeleteFailed, Err: err}
	}
	kept := make([]service.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	return nil
}

// ClearError empties the error slot.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// Reset returns the controller to its empty state. Operations still in
// flight complete without affecting it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.tasks = nil
	c.draft = Draft{}
	c.editTarget = 0
	c.inflight = 0
	c.errMsg = ""
}

func (c *Controller) setErr(epoch uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.errMsg = msg
	}
}
