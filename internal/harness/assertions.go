package harness

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Table    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Table)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(ctx context.Context, eng *engine.Engine, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRowCount:
			err = assertRowCount(ctx, eng, a)
		case AssertFinalState:
			err = assertFinalState(ctx, eng, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertRowCount checks the number of rows stored in a table.
func assertRowCount(ctx context.Context, eng *engine.Engine, a Assertion) error {
	rows, err := eng.Select(ctx, ir.Select{
		Table:   ir.TableName(a.Table),
		Columns: ir.ProjectColumns{},
	})
	if err != nil {
		return &AssertionError{
			Type:     AssertRowCount,
			Table:    a.Table,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("select failed: %v", err),
		}
	}
	if len(rows) != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Table:    a.Table,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", len(rows)),
		}
	}
	return nil
}

// assertFinalState finds the first row matching Where and checks the
// Expect columns of it. The lookup is an ordinary select, so Where and
// Expect are type-checked against the table.
func assertFinalState(ctx context.Context, eng *engine.Engine, a Assertion) error {
	where, err := buildWhere(a.Where)
	if err != nil {
		return err
	}

	names := slices.Sorted(maps.Keys(a.Expect))
	cols := make([]ir.ColumnName, len(names))
	for i, n := range names {
		cols[i] = ir.ColumnName(n)
	}

	whereDesc := formatWhere(a.Where)
	rows, err := eng.Select(ctx, ir.Select{
		Table:   ir.TableName(a.Table),
		Columns: ir.ProjectColumns{Columns: cols},
		Where:   where,
	})
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Table:    a.Table,
			Expected: fmt.Sprintf("row where %s", whereDesc),
			Actual:   fmt.Sprintf("select failed: %v", err),
		}
	}
	if len(rows) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Table:    a.Table,
			Expected: fmt.Sprintf("row where %s", whereDesc),
			Actual:   "row not found",
		}
	}

	row := rows[0].Row
	for _, name := range names {
		want, err := ir.MarshalCanonical(a.Expect[name])
		if err != nil {
			return fmt.Errorf("expect.%s: %w", name, err)
		}
		got, err := ir.MarshalCanonical(row.Get(ir.ColumnName(name)))
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		if !bytes.Equal(want, got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Table:    a.Table,
				Expected: fmt.Sprintf("%s = %s where %s", name, want, whereDesc),
				Actual:   fmt.Sprintf("%s = %s", name, got),
			}
		}
	}
	return nil
}

// buildWhere turns an equality map into a conjunction, in column order.
// An empty map matches every row.
func buildWhere(where map[string]any) (ir.Expression, error) {
	var expr ir.Expression
	for _, name := range slices.Sorted(maps.Keys(where)) {
		v, err := ir.ScalarFromAny(where[name])
		if err != nil {
			return nil, fmt.Errorf("where.%s: %w", name, err)
		}
		cmp := ir.Equals(ir.ColumnName(name), v)
		if expr == nil {
			expr = cmp
		} else {
			expr = ir.Conjoin(expr, cmp)
		}
	}
	if expr == nil {
		return ir.MatchAll(), nil
	}
	return expr, nil
}

// formatWhere renders the where map in statement syntax for messages.
func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "true"
	}
	parts := make([]string, 0, len(where))
	for _, name := range slices.Sorted(maps.Keys(where)) {
		v, err := ir.ScalarFromAny(where[name])
		if err != nil {
			parts = append(parts, fmt.Sprintf("%s = %v", name, where[name]))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", name, ir.FormatValue(v)))
	}
	return strings.Join(parts, " && ")
}
