package commands

import (
	"fmt"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasklist"
)

// fail prints err and returns the exit code for it.
func fail(env *Env, err error) int {
	fmt.Fprintf(env.Err, "error: %s\n", err)
	return exitcode.For(err)
}

// usageError prints a user error.
func usageError(env *Env, format string, args ...any) int {
	fmt.Fprintf(env.Err, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// succeed prints "ok" unless quiet.
func succeed(env *Env) int {
	if !env.Config.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}

// listing returns the tasks loaded when the session started.
func listing(env *Env) ([]service.Task, error) {
	st := env.App.Tasks.State()
	if st.Err != "" {
		return nil, &tasklist.Error{Message: st.Err}
	}
	return st.Tasks, nil
}

// resolve parses a task reference and looks it up in the listing.
func resolve(env *Env, args []string) (service.Task, int) {
	n, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, usageError(env, "%v", err)
	}
	tasks, err := listing(env)
	if err != nil {
		return service.Task{}, fail(env, err)
	}
	task, err := taskAt(tasks, n)
	if err != nil {
		return service.Task{}, usageError(env, "%v", err)
	}
	return task, exitcode.Success
}
