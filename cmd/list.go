package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved scripts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := newScriptStore()
		if err != nil {
			return err
		}
		names, err := scripts.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.PrintErrln("No scripts yet. Start one with 'please build <name>'.")
			return nil
		}
		out := cmd.OutOrStdout()
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
