package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNoSession is returned by Load when no build session file exists on disk.
	ErrNoSession = errors.New("no build in progress")
	// ErrAlreadyOpen is returned when a build is opened while another one is open.
	ErrAlreadyOpen = errors.New("a build is already in progress")
)

// Store persists the single open BuildSession.
type Store interface {
	Save(s *BuildSession) error
	Load() (*BuildSession, error) // returns ErrNoSession if none exists
	Delete() error
}

// diskStore is the concrete Store that writes to the state directory.
type diskStore struct {
	path string // full path to build.json
}

// NewSessionStore returns a Store backed by <dir>/build.json, creating dir if
// needed.
func NewSessionStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "build.json")}, nil
}

// Save marshals s to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(s *BuildSession) (err error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist build state: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "build-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist build state: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist build state: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist build state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist build state: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist build state: %w", err)
	}
	return nil
}

// Load reads and unmarshals the build file.
// Returns ErrNoSession if the file does not exist.
func (d *diskStore) Load() (*BuildSession, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read build state: %w", err)
	}

	var s BuildSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse build state %s: %w", d.path, err)
	}
	if s.Status == StatusClosed {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Delete removes the build file from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete build state: %w", err)
	}
	return nil
}
