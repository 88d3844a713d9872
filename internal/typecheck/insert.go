package typecheck

import (
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// Insert checks that a row fits its table: the value shape matches the
// schema shape, every declared column of the chosen row shape is present,
// and each value fits the column's resolved type. Undeclared input columns
// are ignored.
//
// Insert is a pure function with no side effects.
func Insert(tables Tables, ins ir.Insert) error {
	table, ok := tables[ins.Table]
	if !ok {
		return &TypeError{Code: ErrCodeTableNotFound, Table: ins.Table}
	}

	columns, err := RowShape(table, ins.Value)
	if err != nil {
		return err
	}
	return checkValues(table, columns, ins.Value.Columns())
}

// RowShape returns the declared columns an insert value must provide.
func RowShape(table ir.Table, value ir.InsertValue) (ir.ColumnSet, error) {
	switch v := value.(type) {
	case ir.SingleValue:
		switch cols := table.Columns.(type) {
		case ir.SingleConstructor:
			return cols.Columns, nil
		case ir.MultipleConstructors:
			return nil, &TypeError{Code: ErrCodeConstructorNotSpecified, Table: table.Name}
		}
	case ir.MultipleValue:
		switch cols := table.Columns.(type) {
		case ir.SingleConstructor:
			return nil, &TypeError{
				Code:        ErrCodeConstructorSpecifiedButNotRequired,
				Table:       table.Name,
				Constructor: v.Constructor,
			}
		case ir.MultipleConstructors:
			set, ok := cols.Variants[v.Constructor]
			if !ok {
				return nil, &TypeError{Code: ErrCodeConstructorNotFound, Table: table.Name, Constructor: v.Constructor}
			}
			return set, nil
		}
	}
	panic(fmt.Sprintf("typecheck: unknown insert value %T for columns %T", value, table.Columns))
}

// checkValues visits declared columns in lexical order so the first
// reported problem is deterministic.
func checkValues(table ir.Table, columns ir.ColumnSet, values ir.Record) error {
	for _, name := range columns.Names() {
		col, err := Column(table, name)
		if err != nil {
			return err
		}
		value, ok := values[name]
		if !ok || value == nil {
			return &TypeError{Code: ErrCodeMissingColumnInInput, Table: table.Name, Column: name}
		}
		if err := Scalar(value, col.Type); err != nil {
			te := err.(*TypeError)
			te.Table, te.Column = table.Name, name
			return te
		}
	}
	return nil
}
