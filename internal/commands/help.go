package commands

import (
	"context"
	"flag"
	"fmt"

	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. Usage lines come from Registry,
// or DefaultRegistry when nil.
type HelpCmd struct {
	Registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	fmt.Fprintln(env.Out, "Usage:")
	fmt.Fprintln(env.Out, "  todo                    List tasks (same as todo list)")
	if err := reg.WriteUsage(env.Out); err != nil {
		return exitcode.UserError
	}
	fmt.Fprint(env.Out, commonFlagsText)
	return exitcode.Success
}

const commonFlagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Settings (config.yaml in the config directory, or TODO_* environment variables):
  base_url         API root (default http://localhost:8000/api)
  auth_scheme      Authorization header scheme (default Bearer)
  timeout          Request timeout (default 30s)
`
