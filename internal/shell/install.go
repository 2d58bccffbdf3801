// Package shell installs the zsh snippet that keeps the history file current
// while a build is open.
package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PluginPath returns the path where the plugin file is written.
func PluginPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "please", "please.plugin.zsh"), nil
}

// Install writes the plugin file and prints the source instruction the user
// needs to add to ~/.zshrc.
func Install(w io.Writer) (string, error) {
	path, err := PluginPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(ZshPlugin), 0o644); err != nil {
		return "", fmt.Errorf("writing plugin file: %w", err)
	}

	fmt.Fprintf(w, "\n  ✓ Plugin written to %s\n", path)
	fmt.Fprintf(w, "\n  Add this line to your ~/.zshrc:\n")
	fmt.Fprintf(w, "    source %s\n", path)
	fmt.Fprintf(w, "\n  Then reload: source ~/.zshrc\n\n")
	return path, nil
}

// IsInstalled reports whether the plugin file exists on disk.
func IsInstalled() bool {
	path, err := PluginPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
