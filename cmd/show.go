package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/please/internal/builder"
	"github.com/fakeyudi/please/internal/tui"
)

var plainOutput bool

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := newScriptStore()
		if err != nil {
			return err
		}
		text, err := scripts.Load(args[0])
		if err != nil {
			return err
		}

		if plainOutput || !isTerminal(cmd.OutOrStdout()) {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		return tui.Run(tui.New(args[0], tui.Lines(text)))
	},
}

// printLines writes numbered lines, marking ask lines with '?'.
func printLines(w io.Writer, lines []builder.Line) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "  (no commands yet)")
		return
	}
	width := len(fmt.Sprint(len(lines)))
	for i, l := range lines {
		mark := " "
		if l.Ask {
			mark = "?"
		}
		fmt.Fprintf(w, "%s %*d  %s\n", mark, width, i+1, l.Text)
	}
}

func init() {
	showCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(showCmd)
}
