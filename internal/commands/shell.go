package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"todo/internal/app"
	"todo/internal/authflow"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/tasklist"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd runs an interactive session. Every line is one action against
// the same App, so the session, the listing and the draft carry over.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Interactive session (type help)" }
func (c *ShellCmd) Usage() string     { return "todo shell" }
func (c *ShellCmd) NeedsAuth() bool   { return false }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

type shellVerb struct {
	usage string
	auth  bool
	run   func(sh *shell, ctx context.Context, args []string) error
}

var shellVerbs = map[string]shellVerb{
	"login":    {"login <username> <password>", false, (*shell).login},
	"register": {"register <username> <email> <password>", false, (*shell).register},
	"username": {"username <value>", false, (*shell).setField},
	"email":    {"email <value>", false, (*shell).setField},
	"password": {"password <value>", false, (*shell).setField},
	"toggle":   {"toggle  (switch login/register form)", false, (*shell).toggle},
	"submit":   {"submit  (send the login/register form)", false, (*shell).submit},
	"whoami":   {"whoami", true, (*shell).whoami},
	"list":     {"list", true, (*shell).list},
	"refresh":  {"refresh", true, (*shell).refresh},
	"add":      {"add <title...>", true, (*shell).add},
	"edit":     {"edit <n>  (load a task into the draft)", true, (*shell).edit},
	"set":      {"set title|desc|due|done <value>", true, (*shell).set},
	"draft":    {"draft", true, (*shell).draft},
	"save":     {"save  (create or update from the draft)", true, (*shell).save},
	"cancel":   {"cancel  (discard the draft)", true, (*shell).cancel},
	"dismiss":  {"dismiss  (clear the last task error)", true, (*shell).dismiss},
	"done":     {"done <n>", true, (*shell).done},
	"rm":       {"rm <n>", true, (*shell).rm},
	"logout":   {"logout", true, (*shell).logout},
}

type shell struct {
	env  *Env
	a    *app.App
	verb string
}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string) int {
	sh := &shell{env: env, a: env.App}
	if sh.a.Start(ctx) == app.Authenticated {
		sh.whoami(ctx, nil)
		if err := sh.list(ctx, nil); err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
		}
	} else {
		sh.say("not logged in (type: login <username> <password>)")
	}

	sc := bufio.NewScanner(env.In)
	for {
		sh.prompt()
		if !sc.Scan() {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		name, rest := fields[0], fields[1:]
		switch name {
		case "quit", "exit":
			return exitcode.Success
		case "help", "?":
			sh.help()
			continue
		}

		verb, ok := shellVerbs[name]
		if !ok {
			fmt.Fprintf(env.Err, "error: unknown command: %s\n", name)
			continue
		}
		if verb.auth {
			if err := sh.a.RequireSession(); err != nil {
				fmt.Fprintf(env.Err, "error: %v\n", err)
				continue
			}
		}
		sh.verb = name
		if err := verb.run(sh, ctx, rest); err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func (sh *shell) say(format string, args ...any) {
	if !sh.env.Config.Quiet {
		fmt.Fprintf(sh.env.Out, format+"\n", args...)
	}
}

func (sh *shell) prompt() {
	if sh.env.Config.Quiet {
		return
	}
	if sh.a.Phase() == app.Authenticated {
		fmt.Fprint(sh.env.Out, "todo> ")
		return
	}
	fmt.Fprintf(sh.env.Out, "todo (%s)> ", sh.a.Auth.State().Mode)
}

func (sh *shell) help() {
	names := make([]string, 0, len(shellVerbs))
	for name := range shellVerbs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sh.env.Out, "  %s\n", shellVerbs[name].usage)
	}
	fmt.Fprintln(sh.env.Out, "  quit")
}

func (sh *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}
	sh.fill(authflow.ModeLogin, args[0], "", args[1])
	return sh.submit(ctx, nil)
}

func (sh *shell) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: register <username> <email> <password>")
	}
	sh.fill(authflow.ModeRegister, args[0], args[1], args[2])
	return sh.submit(ctx, nil)
}

// fill switches the form to mode and sets the fields.
func (sh *shell) fill(mode authflow.Mode, username, email, password string) {
	form := sh.a.Auth
	if form.State().Mode != mode {
		form.ToggleMode()
	}
	form.SetUsername(username)
	form.SetEmail(email)
	form.SetPassword(password)
}

func (sh *shell) setField(ctx context.Context, args []string) error {
	v := strings.Join(args, " ")
	switch sh.verb {
	case "username":
		sh.a.Auth.SetUsername(v)
	case "email":
		sh.a.Auth.SetEmail(v)
	case "password":
		sh.a.Auth.SetPassword(v)
	}
	return nil
}

func (sh *shell) toggle(ctx context.Context, args []string) error {
	sh.a.Auth.ToggleMode()
	sh.say("mode: %s", sh.a.Auth.State().Mode)
	return nil
}

func (sh *shell) submit(ctx context.Context, args []string) error {
	if sh.a.Phase() == app.Authenticated {
		return fmt.Errorf("already logged in")
	}
	err := sh.a.Auth.Submit(ctx)
	if sh.a.Phase() != app.Authenticated {
		return err
	}
	sh.whoami(ctx, nil)
	return sh.list(ctx, nil)
}

func (sh *shell) whoami(ctx context.Context, args []string) error {
	if u := sh.a.Session.Session().User; u != nil {
		sh.say("logged in as %s", u.Username)
	}
	return nil
}

func (sh *shell) list(ctx context.Context, args []string) error {
	st := sh.a.Tasks.State()
	if len(st.Tasks) == 0 {
		sh.say("no tasks found")
	} else if err := output.WriteTasks(sh.env.Out, output.Text, st.Tasks); err != nil {
		return err
	}
	if st.Err != "" {
		return errors.New(st.Err)
	}
	return nil
}

func (sh *shell) refresh(ctx context.Context, args []string) error {
	if err := sh.a.Tasks.Refresh(ctx); err != nil {
		return err
	}
	return sh.list(ctx, nil)
}

func (sh *shell) add(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	// add always creates, even when an edit was left open.
	sh.a.Tasks.CancelEdit()
	sh.a.Tasks.EditDraft(func(d *tasklist.Draft) { d.Title = title })
	return sh.save(ctx, nil)
}

func (sh *shell) edit(ctx context.Context, args []string) error {
	n, err := ParseTaskRef(args)
	if err != nil {
		return err
	}
	task, err := taskAt(sh.a.Tasks.State().Tasks, n)
	if err != nil {
		return err
	}
	sh.a.Tasks.BeginEdit(task)
	return sh.draft(ctx, nil)
}

func (sh *shell) set(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: set title|desc|due|done <value>")
	}
	field, v := args[0], strings.Join(args[1:], " ")

	var apply func(d *tasklist.Draft)
	switch field {
	case "title":
		apply = func(d *tasklist.Draft) { d.Title = v }
	case "desc", "description":
		apply = func(d *tasklist.Draft) { d.Description = v }
	case "due":
		apply = func(d *tasklist.Draft) { d.DueDate = v }
	case "done":
		b := true
		if v != "" {
			var err error
			if b, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("invalid value for done: %s", v)
			}
		}
		apply = func(d *tasklist.Draft) { d.IsCompleted = b }
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	sh.a.Tasks.EditDraft(apply)
	return nil
}

func (sh *shell) draft(ctx context.Context, args []string) error {
	st := sh.a.Tasks.State()
	target := "new task"
	if st.Editing() {
		target = fmt.Sprintf("editing task %d", st.EditTarget)
	}
	d := st.Draft
	sh.say("%s: title=%q desc=%q due=%q done=%t", target, d.Title, d.Description, d.DueDate, d.IsCompleted)
	return nil
}

func (sh *shell) save(ctx context.Context, args []string) error {
	if err := sh.a.Tasks.SubmitDraft(ctx); err != nil {
		return err
	}
	return sh.list(ctx, nil)
}

func (sh *shell) cancel(ctx context.Context, args []string) error {
	sh.a.Tasks.CancelEdit()
	return nil
}

func (sh *shell) dismiss(ctx context.Context, args []string) error {
	sh.a.Tasks.ClearError()
	return nil
}

func (sh *shell) done(ctx context.Context, args []string) error {
	if err := sh.edit(ctx, args); err != nil {
		return err
	}
	sh.a.Tasks.EditDraft(func(d *tasklist.Draft) { d.IsCompleted = true })
	return sh.save(ctx, nil)
}

func (sh *shell) rm(ctx context.Context, args []string) error {
	n, err := ParseTaskRef(args)
	if err != nil {
		return err
	}
	task, err := taskAt(sh.a.Tasks.State().Tasks, n)
	if err != nil {
		return err
	}
	if err := sh.a.Tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	return sh.list(ctx, nil)
}

func (sh *shell) logout(ctx context.Context, args []string) error {
	sh.a.Logout(ctx)
	sh.say("logged out")
	return nil
}
