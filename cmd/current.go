package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/please/internal/builder"
	"github.com/fakeyudi/please/internal/history"
	"github.com/fakeyudi/please/internal/tui"
)

var watchCurrent bool

var currentCmd = &cobra.Command{
	Use:     "current",
	Aliases: []string{"status"},
	Short:   "Show the script being recorded",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, err := newBuilder()
		if err != nil {
			return err
		}
		s, err := b.Current()
		if err != nil {
			return noBuild(err)
		}

		if watchCurrent {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("--watch needs a terminal")
			}
			return watchBuild(cmd, b, "building "+s.ScriptName)
		}

		d, err := b.Preview()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Building `%s` since %s\n\n", s.ScriptName, s.StartedAt.Format("2006-01-02 15:04:05"))
		printLines(out, d.Lines)
		return nil
	},
}

// watchBuild shows the draft in the viewer and refreshes it whenever the
// history file changes.
func watchBuild(cmd *cobra.Command, b *builder.Builder, title string) error {
	histPath, err := history.DefaultPath(cfg.HistoryPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	changes := make(chan struct{}, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- history.Watch(ctx, histPath, changes)
	}()

	load := func() ([]builder.Line, error) {
		d, err := b.Preview()
		if err != nil {
			return nil, err
		}
		return d.Lines, nil
	}
	err = tui.Run(tui.NewLive(title, load, changes))

	cancel()
	if werr := <-watchErr; werr != nil {
		logger.Warn("history watcher stopped", zap.Error(werr))
	}
	return err
}

func init() {
	currentCmd.Flags().BoolVarP(&watchCurrent, "watch", "w", false, "keep the view open and refresh as you type")
	rootCmd.AddCommand(currentCmd)
}
