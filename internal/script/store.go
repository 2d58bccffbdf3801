// Package script stores finished scripts, one file per script, and runs or
// edits them.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Shebang is written at the top of scripts whose body does not carry one.
const Shebang = "#!/usr/bin/env bash"

// Header is prepended to bodies without a shebang. A recorded sequence stops
// at its first failing command.
const Header = Shebang + "\nset -e\n"

const ext = ".sh"

var (
	ErrNotFound    = errors.New("script not found")
	ErrExists      = errors.New("script already exists")
	ErrInvalidName = errors.New("invalid script name")
)

// Store keeps scripts as <Dir>/<name>.sh.
type Store struct {
	Dir    string
	Logger *zap.Logger
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scripts directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, Logger: logger}, nil
}

// CleanName validates a script name and strips an optional .sh suffix.
func CleanName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ext)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// Path returns the file path for the named script.
func (s *Store) Path(name string) (string, error) {
	name, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name+ext), nil
}

// Exists reports whether the named script is on disk.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Save writes the script atomically and makes it executable, replacing any
// existing script with the same name.
func (s *Store) Save(name, body string) (err error) {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(body, "#!") {
		body = Header + body
	}

	tmp, err := os.CreateTemp(s.Dir, ".script-*.tmp")
	if err != nil {
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	if err = tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	s.logger().Info("script saved", zap.String("name", name), zap.String("path", p))
	return nil
}

// Load returns the full text of the named script.
func (s *Store) Load(name string) (string, error) {
	p, err := s.Path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("reading script %s: %w", name, err)
	}
	return string(data), nil
}

// Delete removes the named script.
func (s *Store) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("deleting script %s: %w", name, err)
	}
	s.logger().Info("script deleted", zap.String("name", name))
	return nil
}

// List returns the names of all stored scripts, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading scripts directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
