package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Backend  string // "sqlite" | "bolt"

	// Logger is set by the root command before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sumdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "sumdb",
		Short:   "sumdb - a typed document store with tagged-union tables",
		Long:    "A document store whose tables are tagged unions, with a type-checked query language.",
		Version: ir.EngineVersion,

		SilenceUsage:  true,
		SilenceErrors: true, // main prints errors that were not already reported
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, err := store.ParseKind(opts.Backend); err != nil {
				return WrapExitError(ExitCommandError, "invalid --backend", err)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db",
		getEnvOrDefault("SUMDB_DB", "sumdb.db"), "path to the database file (env SUMDB_DB)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend",
		getEnvOrDefault("SUMDB_BACKEND", string(store.KindSQLite)), "storage backend (sqlite|bolt) (env SUMDB_BACKEND)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Add subcommands
	cmd.AddCommand(NewDefineCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger logs to w at debug level when verbose, warn level otherwise.
// Logs never go to stdout so JSON output stays parseable.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// getEnvOrDefault returns the environment variable env, or defaultVal when
// it is unset or empty.
func getEnvOrDefault(env, defaultVal string) string {
	if e := os.Getenv(env); e != "" {
		return e
	}
	return defaultVal
}

// openEngine opens the configured database. The returned close function
// closes the store.
func openEngine(opts *RootOptions) (*engine.Engine, func(), error) {
	kind, err := store.ParseKind(opts.Backend)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid backend", err)
	}
	st, err := store.Open(kind, opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}
	return engine.New(st, engine.WithLogger(logger)), closeFn, nil
}

// newFormatter builds the output formatter for cmd.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// statementFailed reports a rejected statement and returns the exit error
// for it.
func statementFailed(f *OutputFormatter, err error) error {
	code := engine.CodeOf(err)
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return &ExitError{Code: ExitFailure, Message: code, Err: err, Reported: true}
}

// cmdContext returns the command's context, or Background when the command
// was run without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
