package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
)

// TableInfo describes one stored table.
type TableInfo struct {
	Name        ir.TableName `json:"name"`
	Fingerprint string       `json:"fingerprint"`
	Schema      string       `json:"schema"`
}

func newTableInfo(t ir.Table) (TableInfo, error) {
	fp, err := ir.TableFingerprint(t)
	if err != nil {
		return TableInfo{}, err
	}
	return TableInfo{Name: t.Name, Fingerprint: fp, Schema: parser.FormatTable(t)}, nil
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tables",
		Short:         "List defined tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	eng, closeFn, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	tables, err := eng.ListTables(cmdContext(cmd))
	if err != nil {
		return statementFailed(formatter, err)
	}

	infos := make([]TableInfo, 0, len(tables))
	lines := make([]string, 0, len(tables))
	for _, t := range tables {
		info, err := newTableInfo(t)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("table %s", t.Name), err)
		}
		infos = append(infos, info)
		lines = append(lines, string(t.Name))
	}
	if len(lines) == 0 {
		return formatter.Success(infos, "No tables defined.")
	}
	return formatter.Success(infos, strings.Join(lines, "\n"))
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show a table's schema and fingerprint",
		Example: `  sumdb describe pet
  sumdb describe pet --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, ir.TableName(args[0]), cmd)
		},
	}
}

func runDescribe(opts *RootOptions, name ir.TableName, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	eng, closeFn, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	t, ok, err := eng.LookupTable(cmdContext(cmd), name)
	if err != nil {
		return statementFailed(formatter, err)
	}
	if !ok {
		msg := fmt.Sprintf("table %s not found", name)
		if outErr := formatter.Error(string(engine.ErrCodeTableNotFound), msg, nil); outErr != nil {
			return outErr
		}
		return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
	}

	info, err := newTableInfo(t)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("table %s", name), err)
	}
	return formatter.Success(info, fmt.Sprintf("%s\nfingerprint: %s", info.Schema, info.Fingerprint))
}
