// Package session holds the authenticated session of the process: the
// credential and the user it belongs to.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"todo/internal/credential"
	"todo/internal/logging"
	"todo/internal/service"
)

// GenericAuthFailure is reported when the server gives no reason.
const GenericAuthFailure = "Authentication failed."

// ErrNotAuthenticated is returned by callers that need a session and have none.
var ErrNotAuthenticated = errors.New("not logged in")

// Session is a snapshot of the session state.
// User is non-nil iff Token is set and was accepted by the server.
type Session struct {
	Token string
	User  *service.User
}

// Authenticated reports whether the session has a validated user.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// AuthError is a rejected login or registration.
// Reason is meant to be shown to the user as is.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string { return e.Reason }
func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(err error) *AuthError {
	reason := service.Reason(err)
	if reason == "" {
		reason = GenericAuthFailure
	}
	return &AuthError{Reason: reason, Err: err}
}

// Store owns the session. It is safe for concurrent use.
type Store struct {
	auth service.AuthService
	cred *credential.Holder
	log  *zap.Logger

	mu   sync.RWMutex
	user *service.User
	subs []func(Session)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates an unauthenticated store. The transport used by auth must
// read its credential from cred.
func New(auth service.AuthService, cred *credential.Holder, opts ...Option) *Store {
	s := &Store{auth: auth, cred: cred}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log).Named("session")
	return s
}

// Subscribe registers fn to run after every session transition.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Session returns a snapshot of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Session{}
	}
	u := *s.user
	return Session{Token: s.cred.Current(), User: &u}
}

// Authenticated reports whether a validated session exists.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Bootstrap restores the session from the durable slot.
// An empty slot returns false without a network call. A stored credential
// is validated with the server; if validation fails for any reason the slot
// is cleared and false is returned. Failures are never reported: an expired
// session is the normal way a session ends.
func (s *Store) Bootstrap(ctx context.Context) bool {
	ok, err := s.cred.Restore()
	if err != nil {
		s.log.Debug("credential slot unreadable", zap.Error(err))
		s.drop()
		return false
	}
	if !ok {
		return false
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Debug("stored credential rejected", zap.Error(err))
		s.drop()
		return false
	}

	s.setUser(&user)
	return true
}

// Login authenticates with username and password.
// On failure the session and the durable slot are left untouched and the
// returned *AuthError carries the reason to show.
func (s *Store) Login(ctx context.Context, username, password string) error {
	res, err := s.auth.Login(ctx, service.LoginRequest{Username: username, Password: password})
	if err != nil {
		return newAuthError(err)
	}
	return s.establish(res)
}

// Register creates an account and authenticates as it.
// Failure semantics match Login.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	res, err := s.auth.Register(ctx, service.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return newAuthError(err)
	}
	return s.establish(res)
}

func (s *Store) establish(res service.AuthResult) error {
	if err := s.cred.Set(res.Token); err != nil {
		return &AuthError{Reason: "Unable to store credential.", Err: err}
	}
	user := res.User
	s.setUser(&user)
	s.log.Debug("session established", zap.String("username", user.Username))
	return nil
}

// Logout ends the session. The server is told best-effort; its failure is
// ignored. The durable slot is always cleared. Logging out without a session
// is a no-op.
func (s *Store) Logout(ctx context.Context) {
	held := s.cred.Current() != ""
	if !held {
		// A credential may be stored without having been restored.
		held, _ = s.cred.Restore()
	}
	if held {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Debug("remote logout failed", zap.Error(err))
		}
	}
	s.drop()
}

// drop clears the credential and the user.
func (s *Store) drop() {
	if err := s.cred.Clear(); err != nil {
		s.log.Warn("failed to clear credential slot", zap.Error(err))
	}
	s.setUser(nil)
}

func (s *Store) setUser(u *service.User) {
	s.mu.Lock()
	changed := (s.user == nil) != (u == nil) || (u != nil && *s.user != *u)
	s.user = u
	subs := make([]func(Session), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if !changed {
		return
	}
	snap := s.Session()
	for _, fn := range subs {
		fn(snap)
	}
}
