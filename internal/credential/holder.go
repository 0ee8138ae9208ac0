package credential

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultScheme is the authorization scheme used when none is configured.
const DefaultScheme = "Bearer"

// Holder is the single mutable credential of a process.
// It mirrors its Slot in memory and implements oauth2.TokenSource so the
// HTTP transport attaches whatever credential is current at request time.
type Holder struct {
	slot   Slot
	scheme string

	mu    sync.RWMutex
	token string
}

// NewHolder returns an empty holder over slot. Call Restore to load the
// durable credential.
func NewHolder(slot Slot, scheme string) *Holder {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Holder{slot: slot, scheme: scheme}
}

// Restore loads the durable credential into memory.
// Returns false when the slot is empty.
func (h *Holder) Restore() (bool, error) {
	token, err := h.slot.Load()
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			return false, nil
		}
		return false, err
	}
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
	return true, nil
}

// Set persists token and makes it current. Nothing changes if persisting fails.
func (h *Holder) Set(token string) error {
	if err := h.slot.Store(token); err != nil {
		return err
	}
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
	return nil
}

// Clear drops the in-memory credential and clears the slot.
// The in-memory copy is dropped even if clearing the slot fails.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()
	return h.slot.Clear()
}

// Current returns the in-memory credential ("" if none).
func (h *Holder) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Token implements oauth2.TokenSource.
func (h *Holder) Token() (*oauth2.Token, error) {
	token := h.Current()
	if token == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{AccessToken: token, TokenType: h.scheme}, nil
}
