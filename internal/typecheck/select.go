package typecheck

import (
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// Tables is the set of schemas a statement is checked against.
type Tables map[ir.TableName]ir.Table

// Select checks that every projected column and every column the filter
// mentions resolves in the selected table. It returns the projected columns
// with their resolved types, in the order they were requested.
//
// Select is a pure function with no side effects.
func Select(tables Tables, sel ir.Select) ([]ir.TypedColumn, error) {
	table, ok := tables[sel.Table]
	if !ok {
		return nil, &TypeError{Code: ErrCodeTableNotFound, Table: sel.Table}
	}

	if p, ok := sel.Columns.(ir.ProjectConstructor); ok {
		if err := checkConstructor(table, p.Constructor); err != nil {
			return nil, err
		}
	}

	var names []ir.ColumnName
	if sel.Columns != nil {
		names = sel.Columns.Names()
	}
	typed := make([]ir.TypedColumn, 0, len(names))
	for _, name := range names {
		col, err := Column(table, name)
		if err != nil {
			return nil, err
		}
		typed = append(typed, col)
	}

	if err := expression(table, sel.Where); err != nil {
		return nil, err
	}

	return typed, nil
}

// checkConstructor verifies a constructor projection names a constructor
// of a tagged-union table.
func checkConstructor(table ir.Table, c ir.Constructor) error {
	switch cols := table.Columns.(type) {
	case ir.SingleConstructor:
		return &TypeError{Code: ErrCodeConstructorSpecifiedButNotRequired, Table: table.Name, Constructor: c}
	case ir.MultipleConstructors:
		if _, ok := cols.Variants[c]; !ok {
			return &TypeError{Code: ErrCodeConstructorNotFound, Table: table.Name, Constructor: c}
		}
	}
	return nil
}

// expression walks a filter. Nothing is learned from it; it either fits
// the table or it does not.
func expression(table ir.Table, expr ir.Expression) error {
	switch e := expr.(type) {
	case nil, ir.Literal:
		return nil
	case ir.Comparison:
		col, err := Column(table, e.Column)
		if err != nil {
			return err
		}
		return comparable(table, col, e.Value)
	case ir.BinaryFunction:
		if err := expression(table, e.Left); err != nil {
			return err
		}
		return expression(table, e.Right)
	default:
		panic(fmt.Sprintf("typecheck: unknown expression type %T", expr))
	}
}

// comparable rejects comparisons that could never be true: a literal of
// another kind than the column, or null against a Mandatory column.
func comparable(table ir.Table, col ir.TypedColumn, value ir.ScalarValue) error {
	if err := Scalar(value, col.Type); err != nil {
		if te := err.(*TypeError); te.Code == ErrCodeInvalidUTF8 {
			te.Table, te.Column = table.Name, col.Name
			return te
		}
		return &TypeError{
			Code:     ErrCodeComparisonTypeMismatch,
			Table:    table.Name,
			Column:   col.Name,
			Expected: col.Type,
			Value:    value,
		}
	}
	return nil
}
