package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// IO carries the standard streams handed to child processes.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes the script at path with the given shell and blocks until it
// exits.
func Run(ctx context.Context, shell, path string, args []string, stdio IO) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	cmd := exec.CommandContext(ctx, shell, append([]string{path}, args...)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio.In, stdio.Out, stdio.Err
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("script exited with error: %w", err)
	}
	return nil
}

// Editor resolves and launches the user's editor.
type Editor struct {
	// Override takes precedence over $VISUAL and $EDITOR when set.
	Override string
}

// Command returns the editor command line, following the preference chain
// Override, $VISUAL, $EDITOR, vi.
func (e Editor) Command() []string {
	for _, candidate := range []string{e.Override, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// Edit opens path in the editor and blocks until it exits.
func (e Editor) Edit(ctx context.Context, path string, stdio IO) error {
	argv := append(e.Command(), path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio.In, stdio.Out, stdio.Err
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return nil
}
