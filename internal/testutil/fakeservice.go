// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// Messages returned by the fake, matching the real service.
const (
	InvalidCredentialsMsg = "Invalid credentials."
	InvalidTokenMsg       = "Invalid token."
	NotFoundMsg           = "No Task matches the given query."
	PasswordTooShortMsg   = "Ensure this field has at least 8 characters."
	UsernameTakenMsg      = "A user with that username already exists."
	BlankFieldMsg         = "This field may not be blank."
)

type fakeUser struct {
	user     service.User
	password string
}

type fakeTask struct {
	task  service.Task
	owner int64
}

// FakeService is an in-memory implementation of service.Service for testing.
// Authenticated calls resolve the caller from the bound token source, the
// same way the HTTP transport attaches the current credential.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]*fakeUser // username -> user
	tokens map[string]int64     // token -> user ID
	tasks  []fakeTask
	nextID int64
	now    func() time.Time
	source oauth2.TokenSource

	// Error injection for testing
	RegisterErr error
	LoginErr    error
	LogoutErr   error
	MeErr       error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error

	// ListHook, if set, runs at the start of every ListTasks call.
	ListHook func(ctx context.Context)

	calls map[string]int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]*fakeUser),
		tokens: make(map[string]int64),
		now:    time.Now,
		calls:  make(map[string]int),
	}
}

// Bind sets the token source authenticated calls read the credential from.
func (f *FakeService) Bind(ts oauth2.TokenSource) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source = ts
	return f
}

// AddUser creates an account directly.
func (f *FakeService) AddUser(username, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(username, email, password)
}

func (f *FakeService) addUserLocked(username, email, password string) service.User {
	f.nextID++
	u := service.User{ID: f.nextID, Username: username, Email: email}
	f.users[username] = &fakeUser{user: u, password: password}
	return u
}

// IssueToken creates a valid credential for username.
func (f *FakeService) IssueToken(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		panic("testutil: unknown user " + username)
	}
	return f.issueLocked(u.user.ID)
}

func (f *FakeService) issueLocked(userID int64) string {
	// Reuse an existing token, as the real service does.
	for tok, id := range f.tokens {
		if id == userID {
			return tok
		}
	}
	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	f.tokens[tok] = userID
	return tok
}

// Revoke invalidates a credential.
func (f *FakeService) Revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// HasToken reports whether token is currently valid.
func (f *FakeService) HasToken(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

// AddTask stores a task for username and returns it with its assigned ID.
func (f *FakeService) AddTask(username string, fields service.TaskFields) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		panic("testutil: unknown user " + username)
	}
	return f.createLocked(u.user.ID, fields)
}

// Tasks returns the stored tasks of username in server order.
func (f *FakeService) Tasks(username string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil
	}
	return f.listLocked(u.user.ID)
}

// Calls returns how many times the named method was called.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeService) count(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeService) boundToken() string {
	f.mu.Lock()
	ts := f.source
	f.mu.Unlock()
	if ts == nil {
		return ""
	}
	tok, err := ts.Token()
	if err != nil {
		return ""
	}
	return tok.AccessToken
}

// Register implements service.AuthService.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	f.count("Register")
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	return f.register(req)
}

func (f *FakeService) register(req service.RegisterRequest) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields := make(map[string][]string)
	username := strings.TrimSpace(req.Username)
	if username == "" {
		fields["username"] = []string{BlankFieldMsg}
	} else if _, exists := f.users[username]; exists {
		fields["username"] = []string{UsernameTakenMsg}
	}
	if len(req.Password) < 8 {
		fields["password"] = []string{PasswordTooShortMsg}
	}
	if len(fields) > 0 {
		return service.AuthResult{}, &service.APIError{StatusCode: http.StatusBadRequest, Fields: fields}
	}

	u := f.addUserLocked(username, req.Email, req.Password)
	return service.AuthResult{Token: f.issueLocked(u.ID), User: u}, nil
}

// Login implements service.AuthService.
func (f *FakeService) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	f.count("Login")
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	return f.login(req)
}

func (f *FakeService) login(req service.LoginRequest) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[strings.TrimSpace(req.Username)]
	if !ok || u.password != req.Password {
		return service.AuthResult{}, &service.APIError{StatusCode: http.StatusBadRequest, Detail: InvalidCredentialsMsg}
	}
	return service.AuthResult{Token: f.issueLocked(u.user.ID), User: u.user}, nil
}

// Logout implements service.AuthService.
func (f *FakeService) Logout(ctx context.Context) error {
	f.count("Logout")
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	return f.logout(f.boundToken())
}

func (f *FakeService) logout(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.userLocked(token); err != nil {
		return err
	}
	delete(f.tokens, token)
	return nil
}

// Me implements service.AuthService.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.count("Me")
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	return f.me(f.boundToken())
}

func (f *FakeService) me(token string) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userLocked(token)
}

func (f *FakeService) userLocked(token string) (service.User, error) {
	id, ok := f.tokens[token]
	if token == "" || !ok {
		return service.User{}, &service.APIError{StatusCode: http.StatusUnauthorized, Detail: InvalidTokenMsg}
	}
	for _, u := range f.users {
		if u.user.ID == id {
			return u.user, nil
		}
	}
	return service.User{}, &service.APIError{StatusCode: http.StatusUnauthorized, Detail: InvalidTokenMsg}
}

// ListTasks implements service.TaskService.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.count("ListTasks")
	if f.ListHook != nil {
		f.ListHook(ctx)
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.list(f.boundToken())
}

func (f *FakeService) list(token string) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.userLocked(token)
	if err != nil {
		return nil, err
	}
	return f.listLocked(u.ID), nil
}

// listLocked orders open tasks first, newest first within each group.
func (f *FakeService) listLocked(owner int64) []service.Task {
	result := []service.Task{}
	for _, t := range f.tasks {
		if t.owner == owner {
			result = append(result, t.task)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].IsCompleted != result[j].IsCompleted {
			return !result[i].IsCompleted
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// CreateTask implements service.TaskService.
func (f *FakeService) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	f.count("CreateTask")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	return f.create(f.boundToken(), fields)
}

func (f *FakeService) create(token string, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.userLocked(token)
	if err != nil {
		return service.Task{}, err
	}
	if err := validateFields(fields); err != nil {
		return service.Task{}, err
	}
	return f.createLocked(u.ID, fields), nil
}

func (f *FakeService) createLocked(owner int64, fields service.TaskFields) service.Task {
	f.nextID++
	now := f.now().UTC()
	t := service.Task{
		ID:          f.nextID,
		Title:       fields.Title,
		Description: fields.Description,
		DueDate:     fields.DueDate,
		IsCompleted: fields.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks = append(f.tasks, fakeTask{task: t, owner: owner})
	return t
}

// UpdateTask implements service.TaskService.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	f.count("UpdateTask")
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	return f.update(f.boundToken(), id, fields)
}

func (f *FakeService) update(token string, id int64, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.userLocked(token)
	if err != nil {
		return service.Task{}, err
	}
	i, err := f.findLocked(u.ID, id)
	if err != nil {
		return service.Task{}, err
	}
	if err := validateFields(fields); err != nil {
		return service.Task{}, err
	}
	t := &f.tasks[i].task
	t.Title = fields.Title
	t.Description = fields.Description
	t.DueDate = fields.DueDate
	t.IsCompleted = fields.IsCompleted
	t.UpdatedAt = f.now().UTC()
	return *t, nil
}

// DeleteTask implements service.TaskService.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.count("DeleteTask")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return f.delete(f.boundToken(), id)
}

func (f *FakeService) delete(token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.userLocked(token)
	if err != nil {
		return err
	}
	i, err := f.findLocked(u.ID, id)
	if err != nil {
		return err
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// findLocked returns the index of a task owned by owner.
// Tasks of other users are reported as not found.
func (f *FakeService) findLocked(owner, id int64) (int, error) {
	for i, t := range f.tasks {
		if t.task.ID == id && t.owner == owner {
			return i, nil
		}
	}
	return 0, &service.APIError{StatusCode: http.StatusNotFound, Detail: NotFoundMsg}
}

func validateFields(fields service.TaskFields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return &service.APIError{
			StatusCode: http.StatusBadRequest,
			Fields:     map[string][]string{"title": {BlankFieldMsg}},
		}
	}
	return nil
}

// ErrOffline is a convenience transport-level error for injection.
var ErrOffline = errors.New("dial tcp: connection refused")
