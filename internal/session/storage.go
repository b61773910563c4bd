package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the durable home of the raw auth token. It is injectable so the
// manager can be tested without touching the filesystem.
type Storage interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// FileStorage keeps the token in a single file under the user's home
// directory, surviving process restarts.
type FileStorage struct {
	path string
}

// DefaultTokenPath returns the default token location (~/.carta/token)
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".carta", "token"), nil
}

// NewFileStorage creates a file-backed token storage at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStorage) Write(token string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0600)
}

func (s *FileStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
