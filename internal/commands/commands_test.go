package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"todo/internal/app"
	"todo/internal/backend/restapi"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/testutil"
)

const (
	testUser     = "alice"
	testPassword = "correct-horse"
)

// fixture is a fake server with one account and a config dir pointing at it.
type fixture struct {
	fake *testutil.FakeService
	srv  *testutil.Server
	cfg  *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewFakeService()
	fake.AddUser(testUser, "alice@example.com", testPassword)
	srv := testutil.NewServer(t, fake)
	cfg := &config.Config{
		Dir:        t.TempDir(),
		BaseURL:    srv.BaseURL(),
		AuthScheme: "Token",
		Timeout:    5 * time.Second,
	}
	return &fixture{fake: fake, srv: srv, cfg: cfg}
}

// loggedIn stores a valid credential for testUser and returns it.
func (f *fixture) loggedIn(t *testing.T) string {
	t.Helper()
	token := f.fake.IssueToken(testUser)
	if err := os.WriteFile(f.cfg.TokenPath(), []byte(token), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	return token
}

func (f *fixture) addTask(title string) service.Task {
	return f.fake.AddTask(testUser, service.TaskFields{Title: title})
}

// runCommand parses args with the command's flags and runs it the way the
// dispatcher does: NeedsAuth commands run against a started session.
func (f *fixture) runCommand(t *testing.T, cmd commands.Command, args []string, stdin string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	holder := credential.NewHolder(credential.NewFileSlot(f.cfg.TokenPath()), f.cfg.AuthScheme)
	a := app.New(restapi.New(f.cfg, holder), holder)

	ctx := context.Background()
	if cmd.NeedsAuth() && a.Start(ctx) != app.Authenticated {
		t.Fatalf("%s needs a session but none was restored", cmd.Name())
	}

	var outBuf, errBuf bytes.Buffer
	env := &commands.Env{
		Config: f.cfg,
		App:    a,
		In:     strings.NewReader(stdin),
		Out:    &outBuf,
		Err:    &errBuf,
	}
	code = cmd.Run(ctx, env, fs.Args())
	return outBuf.String(), errBuf.String(), code
}

func tokenExists(cfg *config.Config) bool {
	_, err := os.Stat(cfg.TokenPath())
	return err == nil
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.runCommand(t, &commands.VersionCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	f := newFixture(t)

	stdout, _, code := f.runCommand(t, &commands.VersionCmd{}, []string{"--verbose"}, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "todo 0.1.0\n") {
		t.Errorf("expected version first, got %q", stdout)
	}
	if !strings.Contains(stdout, "base_url: "+f.cfg.BaseURL+"\n") {
		t.Errorf("expected configured base_url, got %q", stdout)
	}
}

func TestVersionString_Commit(t *testing.T) {
	orig := commands.Commit
	t.Cleanup(func() { commands.Commit = orig })

	commands.Commit = "3f9c2ab"
	if got := commands.VersionString(); got != "0.1.0 (3f9c2ab)" {
		t.Errorf("expected stamped commit, got %q", got)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.runCommand(t, &commands.HelpCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "todo add", "todo login", "Common flags:", "base_url"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for login command
func TestLoginCommand_PasswordFromStdin(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.runCommand(t, &commands.LoginCmd{}, []string{testUser}, testPassword+"\n")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if !tokenExists(f.cfg) {
		t.Error("expected credential to be stored")
	}

	reqs := f.srv.Requests()
	if len(reqs) == 0 || reqs[0].Path != "/api/auth/login" {
		t.Fatalf("expected login request first, got %+v", reqs)
	}
	if reqs[0].Authorization != "" {
		t.Errorf("login must not carry a credential, got %q", reqs[0].Authorization)
	}
	if strings.Contains(reqs[0].Body, "email") {
		t.Errorf("login body should only hold username and password, got %s", reqs[0].Body)
	}
}

func TestLoginCommand_PasswordFlag(t *testing.T) {
	f := newFixture(t)

	_, stderr, code := f.runCommand(t, &commands.LoginCmd{}, []string{"--password", testPassword, testUser}, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.runCommand(t, &commands.LoginCmd{}, []string{"-p", "wrong", testUser}, "")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: Invalid credentials.\n" {
		t.Errorf("expected server reason, got %q", stderr)
	}
	if tokenExists(f.cfg) {
		t.Error("credential must not be stored after a failed login")
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	stdout, _, code := f.runCommand(t, &commands.LoginCmd{}, []string{testUser}, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected already logged in, got %q", stdout)
	}
	if f.fake.Calls("Login") != 0 {
		t.Error("expected no login request")
	}
}

func TestLoginCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantErr string
	}{
		{"no username", nil, testPassword, "error: username required\n"},
		{"extra argument", []string{testUser, "bob"}, testPassword, "error: unexpected argument: bob\n"},
		{"no password", []string{testUser}, "", "error: password required\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, stderr, code := f.runCommand(t, &commands.LoginCmd{}, tt.args, tt.stdin)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if f.fake.Calls("Login") != 0 {
				t.Error("expected no login request")
			}
		})
	}
}

// Tests for register command
func TestRegisterCommand(t *testing.T) {
	f := newFixture(t)

	args := []string{"--email", "bob@example.com", "--password", "long-enough", "bob"}
	stdout, stderr, code := f.runCommand(t, &commands.RegisterCmd{}, args, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if !tokenExists(f.cfg) {
		t.Error("expected credential to be stored")
	}
	if f.fake.Calls("ListTasks") != 1 {
		t.Errorf("expected the task list to load once, got %d", f.fake.Calls("ListTasks"))
	}
}

func TestRegisterCommand_FieldError(t *testing.T) {
	f := newFixture(t)

	args := []string{"--email", "bob@example.com", "--password", "short", "bob"}
	_, stderr, code := f.runCommand(t, &commands.RegisterCmd{}, args, "")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, testutil.PasswordTooShortMsg) {
		t.Errorf("expected password field error, got %q", stderr)
	}
	if tokenExists(f.cfg) {
		t.Error("credential must not be stored after a failed registration")
	}
}

func TestRegisterCommand_AlreadyLoggedIn(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	args := []string{"--email", "bob@example.com", "--password", "long-enough", "bob"}
	stdout, _, code := f.runCommand(t, &commands.RegisterCmd{}, args, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected already logged in, got %q", stdout)
	}
	if f.fake.Calls("Register") != 0 {
		t.Error("expected no register request")
	}
}

// Tests for logout command
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := f.runCommand(t, &commands.LogoutCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if len(f.srv.Requests()) != 0 {
		t.Error("expected no requests")
	}
}

func TestLogoutCommand(t *testing.T) {
	f := newFixture(t)
	token := f.loggedIn(t)

	stdout, _, code := f.runCommand(t, &commands.LogoutCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if tokenExists(f.cfg) {
		t.Error("expected credential to be removed")
	}
	if f.fake.HasToken(token) {
		t.Error("expected the server to revoke the credential")
	}
}

func TestLogoutCommand_ServerUnreachable(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.srv.Close()

	stdout, stderr, code := f.runCommand(t, &commands.LogoutCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if tokenExists(f.cfg) {
		t.Error("expected credential to be removed even when the server is down")
	}
}

// Tests for whoami command
func TestWhoamiCommand(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	stdout, _, code := f.runCommand(t, &commands.WhoamiCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "alice <alice@example.com>\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

// Tests for list command
func TestListCommand_Empty(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"normal", false, "no tasks found\n"},
		{"quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cfg.Quiet = tt.quiet
			f.loggedIn(t)

			stdout, _, code := f.runCommand(t, &commands.ListCmd{}, nil, "")

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestListCommand_Text(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.addTask("Buy milk")
	f.addTask("Walk dog")

	stdout, _, code := f.runCommand(t, &commands.ListCmd{}, nil, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "   1  [ ] Walk dog\n   2  [ ] Buy milk\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestListCommand_JSON(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	created := f.addTask("Buy milk")

	stdout, _, code := f.runCommand(t, &commands.ListCmd{}, []string{"--format", "json"}, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	var got []service.Task
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if len(got) != 1 || got[0].ID != created.ID || got[0].Title != "Buy milk" {
		t.Errorf("unexpected tasks %+v", got)
	}
}

func TestListCommand_InvalidFormat(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	_, stderr, code := f.runCommand(t, &commands.ListCmd{}, []string{"--format", "xml"}, "")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid format: xml") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_FetchFailed(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.fake.ListErr = errors.New("database is down")

	stdout, stderr, code := f.runCommand(t, &commands.ListCmd{}, nil, "")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: Unable to fetch tasks.\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	args := []string{"--desc", "2%", "--due", "2024-05-01", "Buy", "milk"}
	stdout, stderr, code := f.runCommand(t, &commands.AddCmd{}, args, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}

	tasks := f.fake.Tasks(testUser)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Buy milk" || got.Description != "2%" || got.DueDate == nil || got.DueDate.String() != "2024-05-01" {
		t.Errorf("unexpected task %+v", got)
	}
	if f.fake.Calls("ListTasks") != 2 {
		t.Errorf("expected start-up load plus one refresh after create, got %d", f.fake.Calls("ListTasks"))
	}
}

func TestAddCommand_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no title", nil, "error: title required\n"},
		{"blank title", []string{"  "}, "error: title required\n"},
		{"bad due date", []string{"--due", "05/01/2024", "Buy milk"}, "error: due date must be YYYY-MM-DD\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loggedIn(t)

			_, stderr, code := f.runCommand(t, &commands.AddCmd{}, tt.args, "")

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if f.fake.Calls("CreateTask") != 0 {
				t.Error("expected no create request")
			}
		})
	}
}

func TestAddCommand_ServerError(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.fake.CreateErr = errors.New("boom")

	_, stderr, code := f.runCommand(t, &commands.AddCmd{}, []string{"Buy milk"}, "")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Unable to save task.\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_KeepsUnchangedFields(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	due := service.Date{Year: 2024, Month: 5, Day: 1}
	f.fake.AddTask(testUser, service.TaskFields{Title: "Buy milk", Description: "2%", DueDate: &due})

	_, stderr, code := f.runCommand(t, &commands.EditCmd{}, []string{"--title", "Buy oat milk", "1"}, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	got := f.fake.Tasks(testUser)[0]
	if got.Title != "Buy oat milk" || got.Description != "2%" || got.DueDate == nil || *got.DueDate != due {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestEditCommand_NoDue(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	due := service.Date{Year: 2024, Month: 5, Day: 1}
	f.fake.AddTask(testUser, service.TaskFields{Title: "Buy milk", DueDate: &due})

	_, _, code := f.runCommand(t, &commands.EditCmd{}, []string{"--no-due", "1"}, "")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if got := f.fake.Tasks(testUser)[0]; got.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", got.DueDate)
	}

	var update *testutil.RecordedRequest
	for _, r := range f.srv.Requests() {
		if r.Method == "PUT" {
			update = &r
		}
	}
	if update == nil || !strings.Contains(update.Body, `"due_date":null`) {
		t.Errorf("expected due_date null in update, got %+v", update)
	}
}

func TestEditCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"nothing to change", []string{"1"}, "error: nothing to change\n"},
		{"due and no-due", []string{"--due", "2024-05-01", "--no-due", "1"}, "error: cannot use both --due and --no-due\n"},
		{"done and undo", []string{"--done", "--undo", "1"}, "error: cannot use both --done and --undo\n"},
		{"no ref", []string{"--done"}, "error: task reference required\n"},
		{"out of range", []string{"--done", "2"}, "error: task number out of range: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loggedIn(t)
			f.addTask("Buy milk")

			_, stderr, code := f.runCommand(t, &commands.EditCmd{}, tt.args, "")

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if f.fake.Calls("UpdateTask") != 0 {
				t.Error("expected no update request")
			}
		})
	}
}

// Tests for done and undo commands
func TestDoneAndUndoCommands(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.addTask("Buy milk")

	stdout, _, code := f.runCommand(t, &commands.DoneCmd{}, []string{"1"}, "")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("done: expected ok, got %q (code %d)", stdout, code)
	}
	if !f.fake.Tasks(testUser)[0].IsCompleted {
		t.Fatal("expected task to be completed")
	}

	_, _, code = f.runCommand(t, &commands.UndoCmd{}, []string{"1"}, "")
	if code != exitcode.Success {
		t.Fatalf("undo: expected exit code %d, got %d", exitcode.Success, code)
	}
	if f.fake.Tasks(testUser)[0].IsCompleted {
		t.Error("expected task to be open again")
	}
}

func TestDoneCommand_InvalidRef(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.addTask("Buy milk")

	_, stderr, code := f.runCommand(t, &commands.DoneCmd{}, []string{"a1"}, "")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid task reference: a1\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.addTask("Buy milk")
	f.addTask("Walk dog")

	stdout, _, code := f.runCommand(t, &commands.RmCmd{}, []string{"2"}, "")

	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("expected ok, got %q (code %d)", stdout, code)
	}
	tasks := f.fake.Tasks(testUser)
	if len(tasks) != 1 || tasks[0].Title != "Walk dog" {
		t.Errorf("expected only Walk dog to remain, got %+v", tasks)
	}
	if f.fake.Calls("ListTasks") != 1 {
		t.Errorf("delete must not refetch, got %d list calls", f.fake.Calls("ListTasks"))
	}
}

func TestRmCommand_NotFound(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.addTask("Buy milk")
	f.fake.DeleteErr = &service.APIError{StatusCode: 404, Detail: testutil.NotFoundMsg}

	_, stderr, code := f.runCommand(t, &commands.RmCmd{}, []string{"1"}, "")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Unable to delete task.\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for shell command
func TestShellCommand(t *testing.T) {
	f := newFixture(t)
	f.cfg.Quiet = true

	script := strings.Join([]string{
		"list",
		"login alice " + testPassword,
		"add Buy milk",
		"edit 1",
		"set due 2024-05-01",
		"save",
		"done 1",
		"bogus",
		"logout",
		"quit",
		"list",
	}, "\n")

	stdout, stderr, code := f.runCommand(t, &commands.ShellCmd{}, nil, script)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "[x] Buy milk  (due 2024-05-01)") {
		t.Errorf("expected completed task in output, got %q", stdout)
	}
	wantErrs := "error: not logged in\nerror: unknown command: bogus\n"
	if stderr != wantErrs {
		t.Errorf("expected %q, got %q", wantErrs, stderr)
	}
	if tokenExists(f.cfg) {
		t.Error("expected credential to be removed after logout")
	}
	tasks := f.fake.Tasks(testUser)
	if len(tasks) != 1 || !tasks[0].IsCompleted {
		t.Errorf("unexpected server state %+v", tasks)
	}
}

func TestShellCommand_FormToggle(t *testing.T) {
	f := newFixture(t)
	f.cfg.Quiet = true

	script := "toggle\nusername bob\nemail bob@example.com\npassword long-enough\nsubmit\nwhoami\n"
	_, stderr, code := f.runCommand(t, &commands.ShellCmd{}, nil, script)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no errors, got %q", stderr)
	}
	if f.fake.Calls("Register") != 1 {
		t.Errorf("expected one register call, got %d", f.fake.Calls("Register"))
	}
	if !tokenExists(f.cfg) {
		t.Error("expected credential to be stored")
	}
}

func TestShellCommand_AddAfterEditCreates(t *testing.T) {
	f := newFixture(t)
	f.cfg.Quiet = true

	script := "login alice " + testPassword + "\nadd First\nedit 1\nadd Second\nquit\n"
	_, stderr, code := f.runCommand(t, &commands.ShellCmd{}, nil, script)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no errors, got %q", stderr)
	}
	tasks := f.fake.Tasks(testUser)
	if len(tasks) != 2 || tasks[0].Title != "Second" || tasks[1].Title != "First" {
		t.Errorf("expected both tasks on the server, got %+v", tasks)
	}
	if f.fake.Calls("CreateTask") != 2 {
		t.Errorf("expected two create calls, got %d", f.fake.Calls("CreateTask"))
	}
	if f.fake.Calls("UpdateTask") != 0 {
		t.Errorf("expected no update calls, got %d", f.fake.Calls("UpdateTask"))
	}
}
