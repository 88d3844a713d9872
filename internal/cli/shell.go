package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
)

const shellHelp = `Enter one or more statements per line, separated by ";". Commands:
  .tables  list defined tables
  .help    show this help
  .quit    leave the shell (also .exit)`

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive statement shell",
		Long: `Read statements from stdin and run them against the database. Each line
is run on its own and may hold several statements separated by ";". A
failing statement is reported and the shell keeps going.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	w := cmd.OutOrStdout()

	eng, closeFn, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmdContext(cmd)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	prompt := func() {
		if opts.Format != "json" {
			fmt.Fprint(w, "sumdb> ")
		}
	}

	for prompt(); scanner.Scan(); prompt() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ".quit", ".exit":
			return nil
		case ".help":
			fmt.Fprintln(w, shellHelp)
			continue
		case ".tables":
			tables, err := eng.ListTables(ctx)
			if err != nil {
				_ = formatter.Error(engine.CodeOf(err), err.Error(), nil)
				continue
			}
			for _, t := range tables {
				fmt.Fprintln(w, t.Name)
			}
			continue
		}

		outcomes, err := eng.ExecScript(ctx, line)
		if opts.Format == "json" {
			for _, out := range outcomes {
				_ = formatter.Success(out, "")
			}
		} else {
			for _, out := range outcomes {
				renderOutcome(w, out)
			}
		}
		if err != nil {
			_ = formatter.Error(engine.CodeOf(err), err.Error(), nil)
		}
	}
	if opts.Format != "json" {
		fmt.Fprintln(w)
	}
	return scanner.Err()
}
