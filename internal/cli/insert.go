package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/ir"
)

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Values      string // JSON object of column values
	Constructor string // required for tagged-union tables
}

// InsertResult is the JSON payload of the insert command.
type InsertResult struct {
	Table    ir.TableName `json:"table"`
	Key      int32        `json:"key"`
	Inserted int          `json:"inserted"`
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <table> <key>",
		Short: "Insert one row",
		Long: `Insert one row under an integer key.

Values are a JSON object of column values. Integers must fit in 32 bits;
floats, arrays and nested objects are rejected. A row for a table with
constructors must name its constructor.

Inserting under an existing key replaces the row.

Examples:
  sumdb insert user 1 --values '{"age": 46, "nice": true, "name": "Egg"}'
  sumdb insert pet 1 --constructor Cat --values '{"age": 27, "name": "Mr Cat"}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Values, "values", "{}", "column values as JSON object")
	cmd.Flags().StringVarP(&opts.Constructor, "constructor", "c", "", "constructor of the row")

	return cmd
}

func runInsert(opts *InsertOptions, table, keyArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ins, err := buildInsert(table, keyArg, opts.Constructor, opts.Values)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid insert", err)
	}

	eng, closeFn, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := eng.Insert(cmdContext(cmd), ins)
	if err != nil {
		return statementFailed(formatter, err)
	}

	formatter.VerboseLog("Inserted key %d into %s", ins.Key, ins.Table)
	return formatter.Success(
		InsertResult{Table: ins.Table, Key: ins.Key, Inserted: n},
		fmt.Sprintf("Inserted %d row into %s", n, ins.Table),
	)
}

// buildInsert assembles an insert from command arguments.
func buildInsert(table, keyArg, constructor, valuesJSON string) (ir.Insert, error) {
	key, err := strconv.ParseInt(keyArg, 10, 32)
	if err != nil {
		return ir.Insert{}, fmt.Errorf("key %q is not a 32-bit integer", keyArg)
	}

	var values ir.Record
	if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
		return ir.Insert{}, fmt.Errorf("--values: %w", err)
	}
	if values == nil {
		values = ir.Record{}
	}

	ins := ir.Insert{Table: ir.TableName(table), Key: int32(key)}
	if constructor != "" {
		ins.Value = ir.MultipleValue{Constructor: ir.Constructor(constructor), Values: values}
	} else {
		ins.Value = ir.SingleValue{Values: values}
	}
	return ins, nil
}

