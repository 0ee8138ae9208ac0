// Package app composes the session store and the controllers into one
// client session and drives its state machine:
//
//	Unauthenticated -> [bootstrap | login | register] -> Authenticated -> [logout] -> Unauthenticated
package app

import (
	"context"

	"go.uber.org/zap"

	"todo/internal/authflow"
	"todo/internal/credential"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/tasklist"
)

// Phase is the coarse session state.
type Phase int

const (
	// Unauthenticated shows the login form. It is the initial phase.
	Unauthenticated Phase = iota
	// Authenticated shows the task list.
	Authenticated
)

func (p Phase) String() string {
	if p == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// App is one client session.
type App struct {
	Session *session.Store
	Tasks   *tasklist.Controller
	Auth    *authflow.Controller

	log *zap.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to every component.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.log = l }
}

// New wires an App over svc. cred must be the token source of svc's transport.
func New(svc service.Service, cred *credential.Holder, opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logging.OrNop(a.log)

	a.Session = session.New(svc, cred, session.WithLogger(a.log))
	a.Tasks = tasklist.NewController(tasklist.NewRepository(svc), tasklist.WithLogger(a.log))
	a.Auth = authflow.New(a.Session, a.Tasks)

	a.Session.Subscribe(func(s session.Session) {
		if !s.Authenticated() {
			a.Tasks.Reset()
			a.Auth.Reset()
		}
	})
	return a
}

// Start restores a stored session and, if it is still valid, loads the
// task list. A failed load is left in the task list's error slot.
func (a *App) Start(ctx context.Context) Phase {
	if a.Session.Bootstrap(ctx) {
		if err := a.Tasks.Refresh(ctx); err != nil {
			a.log.Debug("initial refresh failed", zap.Error(err))
		}
	}
	return a.Phase()
}

// Phase returns the current phase.
func (a *App) Phase() Phase {
	if a.Session.Authenticated() {
		return Authenticated
	}
	return Unauthenticated
}

// RequireSession returns session.ErrNotAuthenticated unless authenticated.
func (a *App) RequireSession() error {
	if a.Phase() != Authenticated {
		return session.ErrNotAuthenticated
	}
	return nil
}

// Logout ends the session; the task list and the auth form are cleared
// through the session subscription.
func (a *App) Logout(ctx context.Context) {
	a.Session.Logout(ctx)
}
