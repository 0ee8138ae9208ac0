// Package authflow drives the login and registration form.
package authflow

import (
	"context"
	"sync"
)

// Mode selects which form is shown.
type Mode int

const (
	// ModeLogin asks for username and password.
	ModeLogin Mode = iota
	// ModeRegister also asks for an email.
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Form holds the fields as typed.
type Form struct {
	Username string
	Email    string
	Password string
}

// State is a snapshot of the controller.
type State struct {
	Mode Mode
	Form Form
	Err  string
}

// Authenticator is the part of the session store the form needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, email, password string) error
}

// Refresher loads the task list after a successful authentication.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Controller owns the form state. It is safe for concurrent use.
type Controller struct {
	auth  Authenticator
	tasks Refresher

	mu   sync.Mutex
	mode Mode
	form Form
	err  string
}

// New creates a controller in login mode.
func New(auth Authenticator, tasks Refresher) *Controller {
	return &Controller{auth: auth, tasks: tasks}
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Mode: c.mode, Form: c.form, Err: c.err}
}

// SetUsername sets the username field.
func (c *Controller) SetUsername(v string) { c.update(func(f *Form) { f.Username = v }) }

// SetEmail sets the email field.
func (c *Controller) SetEmail(v string) { c.update(func(f *Form) { f.Email = v }) }

// SetPassword sets the password field.
func (c *Controller) SetPassword(v string) { c.update(func(f *Form) { f.Password = v }) }

func (c *Controller) update(fn func(f *Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// ToggleMode switches between login and register. Fields and error are kept.
func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeLogin {
		c.mode = ModeRegister
	} else {
		c.mode = ModeLogin
	}
}

// Submit logs in or registers depending on the mode. Login sends only
// username and password. On success the form is cleared and the task list
// is loaded; the returned error is then the load's, if any. On failure the
// reason from the session store is shown verbatim and every field,
// password included, is kept.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.err = ""
	mode, form := c.mode, c.form
	c.mu.Unlock()

	var err error
	if mode == ModeRegister {
		err = c.auth.Register(ctx, form.Username, form.Email, form.Password)
	} else {
		err = c.auth.Login(ctx, form.Username, form.Password)
	}
	if err != nil {
		c.mu.Lock()
		c.err = err.Error()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.form = Form{}
	c.mu.Unlock()

	return c.tasks.Refresh(ctx)
}

// Reset returns the form to login mode with empty fields and no error.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeLogin
	c.form = Form{}
	c.err = ""
}
