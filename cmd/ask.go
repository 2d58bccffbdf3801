package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/please/internal/ask"
)

var (
	askVar   string
	askExpr  string
	askValue string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt...>",
	Short: "Add a prompt for a value to the script being recorded",
	Long: `Asks for a variable name, a command using it and a value for right now.
The command runs immediately with that value; the script gets a line that
prompts for the value instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := newBuilder()
		if err != nil {
			return err
		}
		s, err := b.Current()
		if err != nil {
			return noBuild(err)
		}

		h := &ask.Handler{
			In:       cmd.InOrStdin(),
			Out:      cmd.OutOrStdout(),
			Recorder: b,
			Runner: &ask.ShellRunner{
				Shell: cfg.Shell,
				Out:   cmd.OutOrStdout(),
				Err:   cmd.ErrOrStderr(),
			},
			Prompt: strings.Join(args, " "),
			Preset: ask.Answers{
				Name:       askVar,
				Expression: askExpr,
				Value:      askValue,
				HasValue:   cmd.Flags().Changed("value"),
			},
		}

		res, err := h.Run(commandContext(cmd))
		if err != nil {
			if errors.Is(err, ask.ErrCommandFailed) {
				cmd.PrintErrf("The prompt was added to `%s`, but the command failed.\n", s.ScriptName)
			}
			return noBuild(err)
		}
		logger.Debug("ask finished", zap.String("variable", res.Answers.Name))
		cmd.PrintErrf("Added prompt for `%s` to `%s` ^^\n", res.Answers.Name, s.ScriptName)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askVar, "var", "", "variable name (skips the prompt)")
	askCmd.Flags().StringVar(&askExpr, "expr", "", "command using the variable (skips the prompt)")
	askCmd.Flags().StringVar(&askValue, "value", "", "value to use right now (skips the prompt)")
	rootCmd.AddCommand(askCmd)
}
