package engine

import (
	"context"
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
)

// Outcome is the result of one executed statement.
type Outcome struct {
	// Kind is "define", "insert" or "select".
	Kind string `json:"kind"`

	Table ir.TableName `json:"table"`

	// Fingerprint is set for definitions.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Inserted is set for inserts.
	Inserted int `json:"inserted,omitempty"`

	// Columns and Rows are set for selects. Columns is the projection in
	// the order it was requested.
	Columns []ir.ColumnName `json:"columns,omitempty"`
	Rows    []Result        `json:"rows,omitempty"`
}

// Exec runs one parsed statement.
func (e *Engine) Exec(ctx context.Context, stmt parser.Statement) (Outcome, error) {
	switch s := stmt.(type) {
	case parser.DefineStmt:
		fp, err := e.DefineTable(ctx, s.Table)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: "define", Table: s.Table.Name, Fingerprint: fp}, nil

	case parser.InsertStmt:
		n, err := e.Insert(ctx, s.Insert)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: "insert", Table: s.Insert.Table, Inserted: n}, nil

	case parser.SelectStmt:
		rows, err := e.Select(ctx, s.Select)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Kind:    "select",
			Table:   s.Select.Table,
			Columns: s.Select.Columns.Names(),
			Rows:    rows,
		}, nil

	default:
		panic(fmt.Sprintf("engine: unknown statement type %T", stmt))
	}
}

// ExecScript parses src and runs its statements in order, stopping at the
// first failure. The outcomes of the statements that ran are returned
// either way.
func (e *Engine) ExecScript(ctx context.Context, src string) ([]Outcome, error) {
	stmts, err := parser.ParseScript(src)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(stmts))
	for i, stmt := range stmts {
		out, err := e.Exec(ctx, stmt)
		if err != nil {
			return outcomes, fmt.Errorf("statement %d: %w", i+1, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
