package commands

import (
	"context"
	"flag"
	"fmt"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It also handles `todo` with no args.
type ListCmd struct {
	format string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todo list [--format text|json|yaml]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", string(output.Text), "")
	fs.StringVar(&c.format, "f", string(output.Text), "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	format, err := output.ParseFormat(c.format)
	if err != nil {
		return usageError(env, "%v", err)
	}
	if len(args) > 0 {
		return usageError(env, "unexpected argument: %s", args[0])
	}

	tasks, err := listing(env)
	if err != nil {
		return fail(env, err)
	}

	if len(tasks) == 0 && format == output.Text {
		if !env.Config.Quiet {
			fmt.Fprintln(env.Out, "no tasks found")
		}
		return exitcode.Success
	}
	if err := output.WriteTasks(env.Out, format, tasks); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
