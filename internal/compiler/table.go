package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sumdb/internal/ir"
)

// CompileTable parses a CUE value into a Table. Uses the CUE SDK's Go API
// directly.
//
// The value is the table struct itself; its label is the table name. A
// struct of scalar fields is a single-constructor table, a struct of
// structs is a tagged union:
//
//	table: user: {
//		age:  int
//		nice: bool
//		name: string
//	}
//	table: pet: {
//		Cat: {age: int, name: string}
//		Dog: {age: int, name: string, likes_stick: bool}
//	}
func CompileTable(v cue.Value) (ir.Table, error) {
	if err := v.Err(); err != nil {
		return ir.Table{}, formatCUEError(err)
	}

	var t ir.Table
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.Name = ir.TableName(labels[len(labels)-1].String())
	}

	if v.IncompleteKind() != cue.StructKind {
		return ir.Table{}, &CompileError{
			Field:   "table",
			Message: fmt.Sprintf("table %s must be a struct", t.Name),
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return ir.Table{}, formatCUEError(err)
	}

	var (
		columns  = ir.ColumnSet{}
		variants = map[ir.Constructor]ir.ColumnSet{}
	)
	for iter.Next() {
		field := iter.Value()
		if field.IncompleteKind() == cue.StructKind {
			cols, err := compileColumns(field)
			if err != nil {
				return ir.Table{}, err
			}
			variants[ir.Constructor(iter.Label())] = cols
			continue
		}
		typ, err := extractScalarType(field)
		if err != nil {
			return ir.Table{}, err
		}
		columns[ir.ColumnName(iter.Label())] = typ
	}

	switch {
	case len(columns) > 0 && len(variants) > 0:
		return ir.Table{}, &CompileError{
			Field:   "table",
			Message: fmt.Sprintf("table %s mixes columns and constructors", t.Name),
			Pos:     v.Pos(),
		}
	case len(variants) > 0:
		t.Columns = ir.MultipleConstructors{Variants: variants}
	default:
		t.Columns = ir.SingleConstructor{Columns: columns}
	}

	if errs := Validate(t); len(errs) > 0 {
		return ir.Table{}, &CompileError{
			Field:   errs[0].Field,
			Message: errs[0].Message,
			Pos:     v.Pos(),
		}
	}
	return t, nil
}

// compileColumns reads the columns of one constructor.
func compileColumns(v cue.Value) (ir.ColumnSet, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cols := ir.ColumnSet{}
	for iter.Next() {
		typ, err := extractScalarType(iter.Value())
		if err != nil {
			return nil, err
		}
		cols[ir.ColumnName(iter.Label())] = typ
	}
	return cols, nil
}

// extractScalarType converts a CUE type to a column type.
func extractScalarType(v cue.Value) (ir.ScalarType, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return ir.ScalarString, nil
	case cue.IntKind:
		return ir.ScalarInt, nil
	case cue.BoolKind:
		return ir.ScalarBool, nil
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileSchemas compiles every field under the top-level "table" key, in
// declaration order. A value without a "table" key has no tables.
func CompileSchemas(v cue.Value) ([]ir.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []ir.Table
	for iter.Next() {
		t, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// CompileString compiles CUE source text. filename is used in error
// positions.
func CompileString(src, filename string) ([]ir.Table, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return CompileSchemas(v)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
