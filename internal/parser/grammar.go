package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Keywords (type, select, from, where, insert, into, true, false, null)
// lex as Ident and are matched by value in the grammar. Literal keywords
// are also matched by token type so "true" in quotes stays a string.
var sumLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Upper", Pattern: `[A-Z][a-zA-Z0-9_]*`},
	{Name: "Ident", Pattern: `[a-z][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `&&|[{}:,=;]`},
})

type tableAST struct {
	Pos  lexer.Position
	Name string   `parser:"'type' @Ident"`
	Body *bodyAST `parser:"'{' @@ '}'"`
}

type bodyAST struct {
	Variants []*variantAST `parser:"  @@ ( ',' @@ )*"`
	Columns  []*columnAST  `parser:"| @@ ( ',' @@ )*"`
}

type variantAST struct {
	Pos     lexer.Position
	Name    string       `parser:"@Upper '{'"`
	Columns []*columnAST `parser:"@@ ( ',' @@ )* '}'"`
}

type columnAST struct {
	Pos  lexer.Position
	Name string `parser:"@Ident ':'"`
	Type string `parser:"@('Int':Upper | 'Bool':Upper | 'String':Upper)"`
}

type selectAST struct {
	Projection *projectionAST `parser:"'select' @@"`
	Table      string         `parser:"'from' @Ident"`
	Where      *exprAST       `parser:"( 'where' @@ )?"`
}

type projectionAST struct {
	Variant *variantProjectionAST `parser:"  @@"`
	Columns []string              `parser:"| @Ident ( ',' @Ident )*"`
}

type variantProjectionAST struct {
	Constructor string   `parser:"@Upper '{'"`
	Columns     []string `parser:"@Ident ( ',' @Ident )* '}'"`
}

type exprAST struct {
	Terms []*termAST `parser:"@@ ( '&&' @@ )*"`
}

type termAST struct {
	Bool       *boolean       `parser:"  @('true':Ident | 'false':Ident)"`
	Comparison *comparisonAST `parser:"| @@"`
}

type comparisonAST struct {
	Column string      `parser:"@Ident '='"`
	Value  *literalAST `parser:"@@"`
}

type literalAST struct {
	Pos    lexer.Position
	Null   bool     `parser:"  @'null':Ident"`
	Bool   *boolean `parser:"| @('true':Ident | 'false':Ident)"`
	Int    *string  `parser:"| @Int"`
	String *string  `parser:"| @String"`
}

type insertAST struct {
	Pos         lexer.Position
	Table       string       `parser:"'insert' 'into' @Ident"`
	Key         string       `parser:"@Int"`
	Constructor string       `parser:"@Upper?"`
	Values      []*assignAST `parser:"'{' ( @@ ( ',' @@ )* )? '}'"`
}

type assignAST struct {
	Pos    lexer.Position
	Column string      `parser:"@Ident ':'"`
	Value  *literalAST `parser:"@@"`
}

type statementAST struct {
	Table  *tableAST  `parser:"  @@"`
	Select *selectAST `parser:"| @@"`
	Insert *insertAST `parser:"| @@"`
}

type scriptAST struct {
	Statements []*statementAST `parser:"';'* ( @@ ';'* )*"`
}

// boolean captures the true/false keywords.
type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

var options = []participle.Option{
	participle.Lexer(sumLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
}

var (
	tableParser     = participle.MustBuild[tableAST](options...)
	selectParser    = participle.MustBuild[selectAST](options...)
	insertParser    = participle.MustBuild[insertAST](options...)
	statementParser = participle.MustBuild[statementAST](options...)
	scriptParser    = participle.MustBuild[scriptAST](options...)
)
