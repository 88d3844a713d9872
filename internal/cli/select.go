package cli

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/parser"
)

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <query>",
		Short: "Query a table",
		Long: `Run a select statement. The leading "select" keyword may be omitted.

Rows come back in key order. Each row carries its ordinal, its 1-based
position among the matching rows, in key order.

Examples:
  sumdb select 'name, age from user where nice = true'
  sumdb select 'Cat { name } from pet'
  sumdb select name from user --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runSelect(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	query = strings.TrimSpace(query)
	if !strings.HasPrefix(query, "select ") {
		query = "select " + query
	}

	sel, err := parser.ParseSelect(query)
	if err != nil {
		return statementFailed(formatter, err)
	}

	eng, closeFn, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	rows, err := eng.Select(cmdContext(cmd), sel)
	if err != nil {
		return statementFailed(formatter, err)
	}
	formatter.VerboseLog("Selected %d row(s) from %s", len(rows), sel.Table)

	out := engine.Outcome{
		Kind:    "select",
		Table:   sel.Table,
		Columns: sel.Columns.Names(),
		Rows:    rows,
	}
	var text bytes.Buffer
	renderRows(&text, out.Columns, out.Rows)
	return formatter.Success(out, strings.TrimSuffix(text.String(), "\n"))
}
