package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved script",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := newScriptStore()
		if err != nil {
			return err
		}
		if err := scripts.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted script `%s`\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
