package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/app"
	"todo/internal/authflow"
	"todo/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string     { return "todo login [--password <password>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	return runAuth(ctx, env, authflow.ModeLogin, args, "", c.password)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "todo register --email <email> [--password <password>] <username>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string) int {
	return runAuth(ctx, env, authflow.ModeRegister, args, c.email, c.password)
}

// runAuth fills the auth form and submits it. Without --password the
// password is read from the first line of stdin.
func runAuth(ctx context.Context, env *Env, mode authflow.Mode, args []string, email, password string) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return usageError(env, "username required")
	}
	if len(args) > 1 {
		return usageError(env, "unexpected argument: %s", args[1])
	}

	a := env.App
	if a.Start(ctx) == app.Authenticated {
		if !env.Config.Quiet {
			fmt.Fprintln(env.Out, "already logged in")
		}
		return exitcode.Success
	}

	if password == "" {
		var err error
		if password, err = readPassword(env.In); err != nil {
			return usageError(env, "password required")
		}
	}

	form := a.Auth
	if form.State().Mode != mode {
		form.ToggleMode()
	}
	form.SetUsername(args[0])
	form.SetEmail(email)
	form.SetPassword(password)

	err := form.Submit(ctx)
	if a.Phase() != app.Authenticated {
		return fail(env, err)
	}
	// The first load may fail after a successful sign-in; the session stands.
	return succeed(env)
}

func readPassword(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("no input")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
