package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/roach88/sumdb/internal/ir"
)

// ParseError reports text that is not a valid statement.
type ParseError struct {
	// Input is the text that failed to parse.
	Input string

	// Pos locates the problem in Input when known.
	Pos lexer.Position

	Err error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %v", e.Pos.Line, e.Pos.Column, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Statement is one parsed statement of a script.
// Sealed: only DefineStmt, SelectStmt and InsertStmt implement it.
type Statement interface {
	statement()
}

// DefineStmt defines or redefines a table.
type DefineStmt struct {
	Table ir.Table
}

// SelectStmt is a query.
type SelectStmt struct {
	Select ir.Select
}

// InsertStmt writes one row.
type InsertStmt struct {
	Insert ir.Insert
}

func (DefineStmt) statement() {}
func (SelectStmt) statement() {}
func (InsertStmt) statement() {}

// ParseTable parses a table definition:
//
//	type user { age: Int, nice: Bool, name: String }
//	type pet { Cat { age: Int }, Dog { age: Int, likes_stick: Bool } }
func ParseTable(src string) (ir.Table, error) {
	ast, err := tableParser.ParseString("", src)
	if err != nil {
		return ir.Table{}, wrap(src, err)
	}
	t, err := ast.toIR()
	if err != nil {
		return ir.Table{}, wrap(src, err)
	}
	return t, nil
}

// ParseSelect parses a query. A missing where clause matches every row.
func ParseSelect(src string) (ir.Select, error) {
	ast, err := selectParser.ParseString("", src)
	if err != nil {
		return ir.Select{}, wrap(src, err)
	}
	sel, err := ast.toIR()
	if err != nil {
		return ir.Select{}, wrap(src, err)
	}
	return sel, nil
}

// ParseInsert parses `insert into <table> <key> [<Constructor>] { col: literal, ... }`.
func ParseInsert(src string) (ir.Insert, error) {
	ast, err := insertParser.ParseString("", src)
	if err != nil {
		return ir.Insert{}, wrap(src, err)
	}
	ins, err := ast.toIR()
	if err != nil {
		return ir.Insert{}, wrap(src, err)
	}
	return ins, nil
}

// ParseStatement parses exactly one statement of any kind.
func ParseStatement(src string) (Statement, error) {
	ast, err := statementParser.ParseString("", src)
	if err != nil {
		return nil, wrap(src, err)
	}
	stmt, err := ast.toIR()
	if err != nil {
		return nil, wrap(src, err)
	}
	return stmt, nil
}

// ParseScript parses any number of statements, optionally separated by
// semicolons. Lines starting with -- are comments.
func ParseScript(src string) ([]Statement, error) {
	ast, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, wrap(src, err)
	}
	stmts := make([]Statement, 0, len(ast.Statements))
	for _, s := range ast.Statements {
		stmt, err := s.toIR()
		if err != nil {
			return nil, wrap(src, err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func wrap(src string, err error) error {
	pe := &ParseError{Input: src, Err: err}
	var perr participle.Error
	if errors.As(err, &perr) {
		pe.Pos = perr.Position()
		pe.Err = errors.New(perr.Message())
	}
	return pe
}

// positioned is a conversion error tied to a source position, surfaced
// through participle.Error so wrap can locate it.
type positioned struct {
	pos lexer.Position
	msg string
}

func (p *positioned) Error() string           { return p.msg }
func (p *positioned) Message() string         { return p.msg }
func (p *positioned) Position() lexer.Position { return p.pos }

func errorf(pos lexer.Position, format string, args ...any) error {
	return &positioned{pos: pos, msg: fmt.Sprintf(format, args...)}
}

func (s *statementAST) toIR() (Statement, error) {
	switch {
	case s.Table != nil:
		t, err := s.Table.toIR()
		if err != nil {
			return nil, err
		}
		return DefineStmt{Table: t}, nil
	case s.Select != nil:
		sel, err := s.Select.toIR()
		if err != nil {
			return nil, err
		}
		return SelectStmt{Select: sel}, nil
	default:
		ins, err := s.Insert.toIR()
		if err != nil {
			return nil, err
		}
		return InsertStmt{Insert: ins}, nil
	}
}

func (t *tableAST) toIR() (ir.Table, error) {
	table := ir.Table{Name: ir.TableName(t.Name)}
	if len(t.Body.Variants) == 0 {
		cols, err := columnSet(t.Body.Columns)
		if err != nil {
			return ir.Table{}, err
		}
		table.Columns = ir.SingleConstructor{Columns: cols}
		return table, nil
	}

	variants := make(map[ir.Constructor]ir.ColumnSet, len(t.Body.Variants))
	for _, v := range t.Body.Variants {
		c := ir.Constructor(v.Name)
		if _, dup := variants[c]; dup {
			return ir.Table{}, errorf(v.Pos, "duplicate constructor %s", c)
		}
		cols, err := columnSet(v.Columns)
		if err != nil {
			return ir.Table{}, err
		}
		variants[c] = cols
	}
	table.Columns = ir.MultipleConstructors{Variants: variants}
	return table, nil
}

func columnSet(cols []*columnAST) (ir.ColumnSet, error) {
	set := make(ir.ColumnSet, len(cols))
	for _, c := range cols {
		name := ir.ColumnName(c.Name)
		if _, dup := set[name]; dup {
			return nil, errorf(c.Pos, "duplicate column %s", name)
		}
		if name.Reserved() {
			return nil, errorf(c.Pos, "column name %s is reserved", name)
		}
		typ, err := ir.ParseScalarType(c.Type)
		if err != nil {
			return nil, errorf(c.Pos, "%v", err)
		}
		set[name] = typ
	}
	return set, nil
}

func (s *selectAST) toIR() (ir.Select, error) {
	sel := ir.Select{Table: ir.TableName(s.Table), Where: ir.MatchAll()}
	if v := s.Projection.Variant; v != nil {
		sel.Columns = ir.ProjectConstructor{
			Constructor: ir.Constructor(v.Constructor),
			Columns:     columnNames(v.Columns),
		}
	} else {
		sel.Columns = ir.ProjectColumns{Columns: columnNames(s.Projection.Columns)}
	}
	if s.Where != nil {
		where, err := s.Where.toIR()
		if err != nil {
			return ir.Select{}, err
		}
		sel.Where = where
	}
	return sel, nil
}

func columnNames(names []string) []ir.ColumnName {
	out := make([]ir.ColumnName, len(names))
	for i, n := range names {
		out[i] = ir.ColumnName(n)
	}
	return out
}

// toIR folds a && b && c into And(And(a, b), c).
func (e *exprAST) toIR() (ir.Expression, error) {
	var expr ir.Expression
	for _, term := range e.Terms {
		next, err := term.toIR()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			expr = next
			continue
		}
		expr = ir.Conjoin(expr, next)
	}
	return expr, nil
}

func (t *termAST) toIR() (ir.Expression, error) {
	if t.Bool != nil {
		return ir.Literal{Value: bool(*t.Bool)}, nil
	}
	v, err := t.Comparison.Value.value()
	if err != nil {
		return nil, err
	}
	return ir.Equals(ir.ColumnName(t.Comparison.Column), v), nil
}

func (l *literalAST) value() (ir.ScalarValue, error) {
	switch {
	case l.Null:
		return ir.NullValue{}, nil
	case l.Bool != nil:
		return ir.BoolValue(*l.Bool), nil
	case l.Int != nil:
		n, err := strconv.ParseInt(*l.Int, 10, 32)
		if err != nil {
			return nil, errorf(l.Pos, "%s is not an int32", *l.Int)
		}
		return ir.IntValue(n), nil
	default:
		return ir.StringValue(*l.String), nil
	}
}

func (i *insertAST) toIR() (ir.Insert, error) {
	key, err := strconv.ParseInt(i.Key, 10, 32)
	if err != nil {
		return ir.Insert{}, errorf(i.Pos, "key %s is not an int32", i.Key)
	}

	values := make(ir.Record, len(i.Values))
	for _, a := range i.Values {
		name := ir.ColumnName(a.Column)
		if _, dup := values[name]; dup {
			return ir.Insert{}, errorf(a.Pos, "duplicate column %s", name)
		}
		v, err := a.Value.value()
		if err != nil {
			return ir.Insert{}, err
		}
		values[name] = v
	}

	ins := ir.Insert{Table: ir.TableName(i.Table), Key: int32(key)}
	if i.Constructor == "" {
		ins.Value = ir.SingleValue{Values: values}
	} else {
		ins.Value = ir.MultipleValue{Constructor: ir.Constructor(i.Constructor), Values: values}
	}
	return ins, nil
}
