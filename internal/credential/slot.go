// Package credential holds the session credential: a durable slot that
// survives restarts and the in-memory copy the transport attaches to requests.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoCredential is returned when no credential is stored.
var ErrNoCredential = errors.New("no credential stored")

// Slot is a durable key-value slot holding the raw credential string.
// Presence does not imply validity.
type Slot interface {
	// Load returns the stored credential or ErrNoCredential.
	Load() (string, error)

	// Store replaces the stored credential.
	Store(token string) error

	// Clear removes the stored credential. Clearing an empty slot is not an error.
	Clear() error
}

// FileSlot stores the credential in a single file with mode 0600.
type FileSlot struct {
	path string
}

// NewFileSlot returns a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the backing file path.
func (s *FileSlot) Path() string { return s.path }

// Load implements Slot.
func (s *FileSlot) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Store implements Slot. The parent directory is created with mode 0700.
func (s *FileSlot) Store(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// Clear implements Slot.
func (s *FileSlot) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// MemorySlot is a Slot that lives only as long as the process.
type MemorySlot struct {
	mu    sync.Mutex
	token string
}

// NewMemorySlot returns a slot preloaded with token ("" for empty).
func NewMemorySlot(token string) *MemorySlot {
	return &MemorySlot{token: token}
}

// Load implements Slot.
func (s *MemorySlot) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

// Store implements Slot.
func (s *MemorySlot) Store(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements Slot.
func (s *MemorySlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
