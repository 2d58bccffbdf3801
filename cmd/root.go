package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fakeyudi/please/internal/builder"
	"github.com/fakeyudi/please/internal/config"
	"github.com/fakeyudi/please/internal/history"
	"github.com/fakeyudi/please/internal/script"
	"github.com/fakeyudi/please/internal/session"
)

// toolName is how users invoke the binary; history lines starting with it are
// never captured into scripts.
const toolName = "please"

var (
	// cfg holds the merged configuration, populated in PersistentPreRunE.
	cfg config.Config

	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "please [script] [args...]",
	Short: "Record shell commands into reusable scripts",
	Long: `please turns what you type into named scripts.

  please build deploy     start recording a script called "deploy"
  ...run your commands as usual...
  please ask Branch?      add a prompt for a value to the script
  please build            stop recording and save the script
  please deploy           run it`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		logger, err = buildLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("command start", zap.String("command", cmd.CommandPath()), zap.Strings("args", args))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runScript(cmd, args[0], args[1:])
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "please: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the root command and flushes the logger whether or not the
// command failed.
func execute() error {
	err := rootCmd.Execute()
	_ = logger.Sync()
	return err
}

// buildLogger is swapped in tests.
var buildLogger = newLogger

// newLogger writes JSON logs to <state dir>/please.log; verbose adds stderr
// and debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Sampling = nil
	config.OutputPaths = []string{filepath.Join(dir, "please.log")}
	config.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.OutputPaths = append(config.OutputPaths, "stderr")
	}
	return config.Build()
}

// newScriptStore opens the configured scripts directory.
func newScriptStore() (*script.Store, error) {
	dir, err := cfg.ResolvedScriptsDir()
	if err != nil {
		return nil, err
	}
	return script.NewStore(dir, logger.Named("scripts"))
}

// newBuilder wires the build session controller to its on-disk state.
func newBuilder() (*builder.Builder, *script.Store, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving state directory: %w", err)
	}
	sessions, err := session.NewSessionStore(stateDir)
	if err != nil {
		return nil, nil, err
	}
	scripts, err := newScriptStore()
	if err != nil {
		return nil, nil, err
	}
	histPath, err := history.DefaultPath(cfg.HistoryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving history file: %w", err)
	}

	b := &builder.Builder{
		Sessions: sessions,
		History:  &history.Log{Path: histPath, Logger: logger.Named("history")},
		Scripts:  scripts,
		Filter:   builder.SelfFilter{ToolName: toolName, Ignored: cfg.IgnoredCommands},
		Logger:   logger.Named("build"),
	}
	return b, scripts, nil
}

// noBuild decorates session.ErrNoSession with a hint.
func noBuild(err error) error {
	if errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("%w; start one with 'please build <name>'", err)
	}
	return err
}

// runScript executes a stored script with the configured shell.
func runScript(cmd *cobra.Command, name string, args []string) error {
	scripts, err := newScriptStore()
	if err != nil {
		return err
	}
	path, err := scripts.Path(name)
	if err != nil {
		return err
	}
	if !scripts.Exists(name) {
		return fmt.Errorf("%w: %s (see 'please list')", script.ErrNotFound, name)
	}
	logger.Info("running script", zap.String("name", name), zap.Strings("args", args))
	return script.Run(commandContext(cmd), cfg.Shell, path, args, cmdIO(cmd))
}

func cmdIO(cmd *cobra.Command) script.IO {
	return script.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	// Everything after the script name belongs to the script.
	rootCmd.Flags().SetInterspersed(false)
}
