// Package client is the Go counterpart of the browser session controller:
// it holds the current token and task list, talks to the REST API, and
// reconciles local state from server responses only after a write has been
// confirmed.
package client

import (
	"os"
	"path/filepath"
)

// TokenStore persists the bearer token between runs, the way the browser
// app keeps it in localStorage under a fixed key. Load returns the empty
// string when no token has been saved.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

// FileTokenStore keeps the token in a single file.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by the given file path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Save writes the token, creating parent directories as needed. The file is
// owner-readable only, since it holds a live credential.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load reads the persisted token; a missing file means no session.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Clear erases the persisted token. Clearing an absent token is not an
// error.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
