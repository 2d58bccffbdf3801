package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/please/internal/shell"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the zsh snippet that keeps history current while recording",
	Long: `please reads commands back from the zsh history file, so zsh has to write
each command as soon as it runs. setup writes a small plugin that turns on
INC_APPEND_HISTORY and EXTENDED_HISTORY, and tells you how to source it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := shell.Install(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("installing zsh plugin: %w", err)
		}
		logger.Info("plugin installed", zap.String("path", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
