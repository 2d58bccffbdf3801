package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/please/internal/builder"
	"github.com/fakeyudi/please/internal/script"
	"github.com/fakeyudi/please/internal/session"
	"github.com/fakeyudi/please/internal/shell"
)

var buildForce bool

var buildCmd = &cobra.Command{
	Use:   "build [name]",
	Short: "Start recording a script, or save the one being recorded",
	Long: `With a name, start recording: every command you type from now on is
captured. Without a name, stop recording and save the script. --force
replaces an existing script of the same name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, scripts, err := newBuilder()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return openBuild(cmd, b, args[0])
		}
		return closeBuild(cmd, b, scripts)
	},
}

func openBuild(cmd *cobra.Command, b *builder.Builder, name string) error {
	s, err := b.Open(name, buildForce)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyOpen) {
			return fmt.Errorf("%w; finish it with 'please build' or drop it with 'please reset'", err)
		}
		return err
	}
	cmd.Printf("Started building script `%s` ^^\n", s.ScriptName)
	return nil
}

func closeBuild(cmd *cobra.Command, b *builder.Builder, scripts *script.Store) error {
	d, err := b.Close(buildForce)
	if err != nil {
		if errors.Is(err, script.ErrExists) {
			return fmt.Errorf("%w; save over it with 'please build --force'", err)
		}
		if d != nil {
			// The build is gone; make sure the user still has the text.
			cmd.PrintErrln("The script could not be saved. Here it is so nothing is lost:")
			cmd.PrintErrln()
			fmt.Fprint(cmd.OutOrStdout(), d.Body())
		}
		return noBuild(err)
	}

	path, _ := scripts.Path(d.Name)
	cmd.Printf("Saved script `%s` (%d commands, %d ask lines) to %s\n", d.Name, d.Commands(), d.Asks(), path)
	if d.Commands() == 0 && !shell.IsInstalled() {
		cmd.PrintErrln("warning: no commands were captured. zsh may not be writing history as you type;")
		cmd.PrintErrln("         run 'please setup' to enable INC_APPEND_HISTORY")
	}
	return nil
}

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "replace an existing script with the same name")
	rootCmd.AddCommand(buildCmd)
}
