package commands

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"runtime/debug"

	"todo/internal/exitcode"
)

// Version and Commit are stamped at link time:
//
//	go build -ldflags "-X todo/internal/commands.Version=1.2.0 -X todo/internal/commands.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.1.0"
	Commit  = ""
)

func init() {
	Register(&VersionCmd{})
}

// VersionString is the release plus the commit it was built from, when known.
// Without a stamped Commit the VCS revision recorded by the go tool is used.
func VersionString() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return rev + dirty
}

// VersionCmd prints the client build and, with --verbose, the service it talks to.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print the client version" }
func (c *VersionCmd) Usage() string     { return "todo version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
	fs.BoolVar(&c.verbose, "v", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprintf(env.Out, "todo %s\n", VersionString())
	if c.verbose {
		fmt.Fprintf(env.Out, "go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(env.Out, "base_url: %s\n", env.Config.BaseURL)
		fmt.Fprintf(env.Out, "config:   %s\n", env.Config.Dir)
	}
	return exitcode.Success
}
