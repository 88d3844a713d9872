package engine

import (
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// Apply evaluates a filter against one stored row.
//
// A Comparison is true when the row's value for the column equals the
// literal; a column the row lacks reads as null. And evaluates its right
// side only when the left side is true. A nil expression matches.
func Apply(expr ir.Expression, row ir.Record) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case ir.Literal:
		return e.Value
	case ir.Comparison:
		return row.Get(e.Column) == e.Value
	case ir.BinaryFunction:
		switch e.Function {
		case ir.And:
			return Apply(e.Left, row) && Apply(e.Right, row)
		default:
			panic(fmt.Sprintf("engine: unknown function %v", e.Function))
		}
	default:
		panic(fmt.Sprintf("engine: unknown expression type %T", expr))
	}
}
