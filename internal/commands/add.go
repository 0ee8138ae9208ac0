package commands

import (
	"context"
	"flag"
	"strings"

	"todo/internal/tasklist"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc      string
	due       string
	completed bool
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add [--desc <text>] [--due YYYY-MM-DD] [--done] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.BoolVar(&c.completed, "done", false, "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		return usageError(env, "title required")
	}

	tasks := env.App.Tasks
	tasks.EditDraft(func(d *tasklist.Draft) {
		*d = tasklist.Draft{
			Title:       title,
			Description: c.desc,
			DueDate:     c.due,
			IsCompleted: c.completed,
		}
	})
	if err := tasks.SubmitDraft(ctx); err != nil {
		return fail(env, err)
	}
	return succeed(env)
}
