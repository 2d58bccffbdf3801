package cmd

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the build in progress without saving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := newBuilder()
		if err != nil {
			return err
		}
		s, err := b.Reset()
		if err != nil {
			return noBuild(err)
		}
		cmd.Printf("Discarded build of `%s`\n", s.ScriptName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
