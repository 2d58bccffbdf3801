package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/please/internal/script"
)

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Open a saved script in your editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := newScriptStore()
		if err != nil {
			return err
		}
		path, err := scripts.Path(args[0])
		if err != nil {
			return err
		}
		if !scripts.Exists(args[0]) {
			return fmt.Errorf("%w: %s", script.ErrNotFound, args[0])
		}
		ed := script.Editor{Override: cfg.Editor}
		return ed.Edit(commandContext(cmd), path, cmdIO(cmd))
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
