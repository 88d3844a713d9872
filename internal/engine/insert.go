package engine

import (
	"context"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/typecheck"
)

// Insert type-checks ins against its table and stores it, replacing any
// row under the same key. Only the columns declared for the row's shape
// are persisted. It returns the number of rows written.
func (e *Engine) Insert(ctx context.Context, ins ir.Insert) (int, error) {
	table, ok, err := e.store.LookupTable(ctx, ins.Table)
	if err != nil {
		return 0, &InsertError{Code: ErrCodeStorage, Table: ins.Table, Key: ins.Key, Err: err}
	}
	if !ok {
		return 0, &InsertError{Code: ErrCodeTableNotFound, Table: ins.Table, Key: ins.Key}
	}

	tables := typecheck.Tables{table.Name: table}
	if err := typecheck.Insert(tables, ins); err != nil {
		return 0, &InsertError{Code: ErrCodeTypeError, Table: ins.Table, Key: ins.Key, Err: err}
	}

	// RowShape cannot fail once Insert passed.
	shape, _ := typecheck.RowShape(table, ins.Value)
	stored := ir.Insert{Table: ins.Table, Key: ins.Key, Value: declaredOnly(ins.Value, shape)}

	if err := e.store.PutRow(ctx, stored); err != nil {
		return 0, &InsertError{Code: ErrCodeStorage, Table: ins.Table, Key: ins.Key, Err: err}
	}

	e.logger.Debug("row inserted",
		"table", ins.Table,
		"key", ins.Key)
	return 1, nil
}

// declaredOnly drops input columns the row shape does not declare.
func declaredOnly(value ir.InsertValue, shape ir.ColumnSet) ir.InsertValue {
	values := make(ir.Record, len(shape))
	for name, v := range value.Columns() {
		if _, ok := shape[name]; ok {
			values[name] = v
		}
	}
	if mv, ok := value.(ir.MultipleValue); ok {
		return ir.MultipleValue{Constructor: mv.Constructor, Values: values}
	}
	return ir.SingleValue{Values: values}
}
