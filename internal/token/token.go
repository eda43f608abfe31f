// Package token stores the opaque auth token. The token's contents are
// never interpreted client-side; it is only forwarded to the API.
package token

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("no auth token stored")

// Store is the opaque token capability used by the gateway.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	RemoveToken() error
}

// FileStore persists the token in a single file, created with 0600.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token reads the stored token. Returns ErrNoToken if the file does not
// exist or is empty.
func (s *FileStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// SetToken writes the token, creating parent directories as needed.
func (s *FileStore) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

// RemoveToken deletes the stored token. Removing an absent token is a no-op.
func (s *FileStore) RemoveToken() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// StaticStore holds a token in memory. Used in tests and for one-shot
// invocations where the token arrives via environment.
type StaticStore struct {
	mu  sync.Mutex
	tok string
}

// NewStaticStore creates a store pre-loaded with tok (may be empty).
func NewStaticStore(tok string) *StaticStore {
	return &StaticStore{tok: tok}
}

// Token returns the held token, or ErrNoToken when empty.
func (s *StaticStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == "" {
		return "", ErrNoToken
	}
	return s.tok, nil
}

// SetToken replaces the held token.
func (s *StaticStore) SetToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}

// RemoveToken clears the held token.
func (s *StaticStore) RemoveToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	return nil
}
