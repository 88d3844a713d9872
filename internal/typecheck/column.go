package typecheck

import (
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// Column resolves the type a query sees for column in table.
//
// For a SingleConstructor table the column must be declared and is
// Mandatory. For a MultipleConstructors table the declarations across all
// constructors are unified (see the package documentation).
func Column(table ir.Table, column ir.ColumnName) (ir.TypedColumn, error) {
	switch cols := table.Columns.(type) {
	case ir.SingleConstructor:
		t, ok := cols.Columns[column]
		if !ok {
			return ir.TypedColumn{}, columnNotFound(table, column)
		}
		return ir.TypedColumn{Name: column, Type: ir.MandatoryOf(t)}, nil

	case ir.MultipleConstructors:
		var (
			found   bool
			first   ir.ScalarType
			present int
		)
		constructors := cols.Constructors()
		for _, c := range constructors {
			t, ok := cols.Variants[c][column]
			if !ok {
				continue
			}
			if !found {
				found, first = true, t
			} else if t != first {
				return ir.TypedColumn{}, &TypeError{
					Code:   ErrCodeColumnMismatch,
					Table:  table.Name,
					Column: column,
					Left:   first,
					Right:  t,
				}
			}
			present++
		}

		switch {
		case !found:
			return ir.TypedColumn{}, columnNotFound(table, column)
		case present == len(constructors):
			return ir.TypedColumn{Name: column, Type: ir.MandatoryOf(first)}, nil
		default:
			return ir.TypedColumn{Name: column, Type: ir.OptionalOf(first)}, nil
		}

	default:
		panic(fmt.Sprintf("typecheck: unknown columns type %T", table.Columns))
	}
}

func columnNotFound(table ir.Table, column ir.ColumnName) error {
	return &TypeError{Code: ErrCodeColumnNotFound, Table: table.Name, Column: column}
}
