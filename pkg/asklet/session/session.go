// Package session persists the identity of the person playing through the
// shell oracle so the same participant is recognized across runs.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store loads, saves and clears a session identifier.
type Store interface {
	// Load returns the saved identifier. ok is false when nothing is saved.
	Load() (id string, ok bool, err error)
	Save(id string) error
	Clear() error
}

// NewID mints a random 32-character hex identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// DefaultPath is the marker file used when no path is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "asklet_user")
}

// FileStore keeps the identifier in a single plain-text file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the identifier from disk.
func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Save writes id to a temporary file next to Path and renames it into
// place, so readers never see a partial write.
func (s *FileStore) Save(id string) error {
	if id == "" {
		return fmt.Errorf("save session: empty id")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".asklet-session-*")
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(id); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the marker file. A missing file is not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
