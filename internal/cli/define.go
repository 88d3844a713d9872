package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
)

// DefineOptions holds flags for the define command.
type DefineOptions struct {
	*RootOptions
	File string // .cue file or directory of .cue files
}

// DefinedTable is the JSON payload of one defined table.
type DefinedTable struct {
	Table       ir.TableName `json:"table"`
	Fingerprint string       `json:"fingerprint"`
}

// NewDefineCommand creates the define command.
func NewDefineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DefineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "define [type-definition...]",
		Short: "Define or replace tables",
		Long: `Define tables from type definitions or from CUE schema files.

A definition replaces any earlier table of the same name. Rows already
stored are kept.

Examples:
  sumdb define 'type user { age: Int, nice: Bool, name: String }'
  sumdb define 'type pet { Cat { age: Int }, Dog { name: String } }'
  sumdb define --file ./schemas`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefine(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "CUE schema file or directory")

	return cmd
}

func runDefine(opts *DefineOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if len(args) == 0 && opts.File == "" {
		return NewExitError(ExitCommandError, "nothing to define: pass type definitions or --file")
	}

	var tables []ir.Table
	if opts.File != "" {
		loaded, err := LoadSchemas(opts.File)
		if err != nil {
			if outErr := formatter.Error(loadErrorCode(err), err.Error(), nil); outErr != nil {
				return outErr
			}
			return &ExitError{Code: ExitFailure, Message: "failed to load schemas", Err: err, Reported: true}
		}
		formatter.VerboseLog("Loaded %d table(s) from %d CUE file(s)", len(loaded.Tables), loaded.FileCount)
		tables = append(tables, loaded.Tables...)
	}
	for _, src := range args {
		t, err := parser.ParseTable(src)
		if err != nil {
			return statementFailed(formatter, err)
		}
		tables = append(tables, t)
	}

	eng, closeFn, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFn()

	defined, err := defineTables(cmdContext(cmd), eng, tables)
	if err != nil {
		return statementFailed(formatter, err)
	}

	lines := make([]string, len(defined))
	for i, d := range defined {
		lines[i] = fmt.Sprintf("Defined table %s (fingerprint %s)", d.Table, shortFingerprint(d.Fingerprint))
	}
	return formatter.Success(defined, strings.Join(lines, "\n"))
}

// defineTables defines tables in order, stopping at the first failure.
func defineTables(ctx context.Context, eng *engine.Engine, tables []ir.Table) ([]DefinedTable, error) {
	defined := make([]DefinedTable, 0, len(tables))
	for _, t := range tables {
		fp, err := eng.DefineTable(ctx, t)
		if err != nil {
			return nil, err
		}
		defined = append(defined, DefinedTable{Table: t.Name, Fingerprint: fp})
	}
	return defined, nil
}
