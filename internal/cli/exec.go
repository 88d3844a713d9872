package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	File string // script file, "-" for stdin
}

// ExecResult is the JSON payload of the exec command.
type ExecResult struct {
	Results []engine.Outcome `json:"results"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec [script]",
		Short: "Run a script of statements",
		Long: `Run statements separated by ";". Execution stops at the first
failing statement; statements before it stay applied.

The script is read from the arguments, from --file, or from stdin when
neither is given.

Examples:
  sumdb exec 'type t { n: Int }; insert into t 1 { n: 1 }; select n from t'
  sumdb exec --file seed.sumdb
  cat seed.sumdb | sumdb exec`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "script file (- for stdin)")

	return cmd
}

func runExec(opts *ExecOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	src, err := readScript(opts.File, args, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	eng, closeFn, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFn()

	outcomes, err := eng.ExecScript(cmdContext(cmd), src)
	if err != nil {
		// Report what ran before the failure in text mode.
		if opts.Format != "json" {
			for _, out := range outcomes {
				renderOutcome(formatter.Writer, out)
			}
		}
		return statementFailed(formatter, err)
	}

	var text bytes.Buffer
	for _, out := range outcomes {
		renderOutcome(&text, out)
	}
	return formatter.Success(ExecResult{Results: outcomes}, strings.TrimSuffix(text.String(), "\n"))
}

func readScript(file string, args []string, stdin io.Reader) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("pass a script or --file, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		return string(data), err
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
}
