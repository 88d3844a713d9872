package engine

import (
	"context"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/typecheck"
)

// Result is one matching row. Ordinals count matches from 1 in key order.
type Result struct {
	Ordinal int       `json:"ordinal"`
	Row     ir.Record `json:"row"`
}

// Select type-checks sel and returns the projected rows that match its
// filter, in key order.
//
// A constructor projection (Cat{age}) also restricts the scan to rows
// tagged with that constructor. A projected column a row lacks comes back
// as null.
func (e *Engine) Select(ctx context.Context, sel ir.Select) ([]Result, error) {
	if sel.Columns == nil {
		sel.Columns = ir.ProjectColumns{}
	}
	table, ok, err := e.store.LookupTable(ctx, sel.Table)
	if err != nil {
		return nil, &SelectError{Code: ErrCodeStorage, Table: sel.Table, Err: err}
	}
	if !ok {
		return nil, &SelectError{Code: ErrCodeTableNotFound, Table: sel.Table}
	}

	if _, err := typecheck.Select(typecheck.Tables{table.Name: table}, sel); err != nil {
		return nil, &SelectError{Code: ErrCodeTypeError, Table: sel.Table, Err: err}
	}

	where := sel.Where
	if where == nil {
		where = ir.MatchAll()
	}
	if p, ok := sel.Columns.(ir.ProjectConstructor); ok {
		where = ir.Conjoin(where, ir.Equals(ir.TypeColumn, ir.StringValue(p.Constructor)))
	}
	columns := sel.Columns.Names()

	results := []Result{}
	err = e.store.ScanRows(ctx, sel.Table, func(_ int32, row ir.Record) error {
		if !Apply(where, row) {
			return nil
		}
		results = append(results, Result{
			Ordinal: len(results) + 1,
			Row:     project(row, columns),
		})
		return nil
	})
	if err != nil {
		return nil, &SelectError{Code: ErrCodeStorage, Table: sel.Table, Err: err}
	}

	e.logger.Debug("select executed",
		"table", sel.Table,
		"columns", len(columns),
		"matched", len(results))
	return results, nil
}

// project builds the output row with exactly the requested columns.
func project(row ir.Record, columns []ir.ColumnName) ir.Record {
	out := make(ir.Record, len(columns))
	for _, c := range columns {
		out[c] = row.Get(c)
	}
	return out
}
