package ask

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// ShellRunner runs expressions with `<Shell> -c`.
type ShellRunner struct {
	Shell string // defaults to sh
	Out   io.Writer
	Err   io.Writer
}

// Run executes expr once with env appended to the current environment.
func (r *ShellRunner) Run(ctx context.Context, expr string, env []string, stdin io.Reader) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", expr)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, r.Out, r.Err
	return cmd.Run()
}
