package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable please settings.
type Config struct {
	HistoryPath     string   `json:"history_path"` // override auto-detect
	ScriptsDir      string   `json:"scripts_dir"`
	Shell           string   `json:"shell"`  // runs scripts and ask expressions
	Editor          string   `json:"editor"` // takes precedence over $VISUAL/$EDITOR
	IgnoredCommands []string `json:"ignored_commands"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		Shell:           "bash",
		IgnoredCommands: []string{},
	}
}

// StateDir returns $XDG_STATE_HOME/please or ~/.local/state/please.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "please"), nil
}

// ResolvedScriptsDir returns ScriptsDir, or <state dir>/scripts when unset.
func (c Config) ResolvedScriptsDir() (string, error) {
	if c.ScriptsDir != "" {
		return c.ScriptsDir, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scripts"), nil
}

// LoadGlobal reads ~/.config/please/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "please", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .pleaseconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".pleaseconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.HistoryPath != "" {
			result.HistoryPath = c.HistoryPath
		}
		if c.ScriptsDir != "" {
			result.ScriptsDir = c.ScriptsDir
		}
		if c.Shell != "" {
			result.Shell = c.Shell
		}
		if c.Editor != "" {
			result.Editor = c.Editor
		}
		if len(c.IgnoredCommands) > 0 {
			result.IgnoredCommands = c.IgnoredCommands
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
