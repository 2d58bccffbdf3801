package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <name> [args...]",
	Short: "Run a saved script",
	Long:  "Run a saved script. Arguments after the name are passed to the script; 'please <name>' does the same.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript(cmd, args[0], args[1:])
	},
}

func init() {
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}
