package commands

import (
	"context"
	"flag"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasklist"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given.
type optString struct {
	val string
	set bool
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.val, o.set = s, true
	return nil
}

// EditCmd implements the edit command. Unspecified fields keep their
// current values; the whole task is sent back.
type EditCmd struct {
	title  optString
	desc   optString
	due    optString
	noDue  bool
	mark   bool
	unmark bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "todo edit [--title <t>] [--desc <d>] [--due YYYY-MM-DD | --no-due] [--done | --undo] <n>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.due = optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.due, "due", "")
	fs.BoolVar(&c.noDue, "no-due", false, "")
	fs.BoolVar(&c.mark, "done", false, "")
	fs.BoolVar(&c.unmark, "undo", false, "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string) int {
	if c.due.set && c.noDue {
		return usageError(env, "cannot use both --due and --no-due")
	}
	if c.mark && c.unmark {
		return usageError(env, "cannot use both --done and --undo")
	}
	if !c.title.set && !c.desc.set && !c.due.set && !c.noDue && !c.mark && !c.unmark {
		return usageError(env, "nothing to change")
	}

	task, code := resolve(env, args)
	if code != exitcode.Success {
		return code
	}

	return save(ctx, env, task, func(d *tasklist.Draft) {
		if c.title.set {
			d.Title = c.title.val
		}
		if c.desc.set {
			d.Description = c.desc.val
		}
		switch {
		case c.due.set:
			d.DueDate = c.due.val
		case c.noDue:
			d.DueDate = ""
		}
		switch {
		case c.mark:
			d.IsCompleted = true
		case c.unmark:
			d.IsCompleted = false
		}
	})
}

// save loads task into the draft, applies fn and submits it as an update.
func save(ctx context.Context, env *Env, task service.Task, fn func(d *tasklist.Draft)) int {
	tasks := env.App.Tasks
	tasks.BeginEdit(task)
	tasks.EditDraft(fn)
	if err := tasks.SubmitDraft(ctx); err != nil {
		return fail(env, err)
	}
	return succeed(env)
}
