package ir

// Function is a binary boolean function usable in a filter.
type Function int

const (
	And Function = iota
)

func (f Function) String() string {
	switch f {
	case And:
		return "&&"
	default:
		return "?"
	}
}

// Expression is a filter evaluated against one row.
// Sealed: only Literal, Comparison and BinaryFunction implement it.
type Expression interface {
	expressionNode()
}

// Literal is a constant boolean filter.
type Literal struct {
	Value bool
}

func (Literal) expressionNode() {}

// Comparison tests a column for equality with a value.
type Comparison struct {
	Column ColumnName
	Value  ScalarValue
}

func (Comparison) expressionNode() {}

// BinaryFunction combines two filters. And short-circuits on a false left side.
type BinaryFunction struct {
	Function Function
	Left     Expression
	Right    Expression
}

func (BinaryFunction) expressionNode() {}

// MatchAll is the filter of a select without a where clause.
func MatchAll() Expression { return Literal{Value: true} }

// Equals builds a Comparison.
func Equals(column ColumnName, value ScalarValue) Expression {
	return Comparison{Column: column, Value: value}
}

// Conjoin builds the conjunction of two filters.
func Conjoin(left, right Expression) Expression {
	return BinaryFunction{Function: And, Left: left, Right: right}
}

// Projection is the column list of a select.
// Sealed: only ProjectColumns and ProjectConstructor implement it.
type Projection interface {
	projectionNode()
	Names() []ColumnName
}

// ProjectColumns projects columns from rows of any constructor.
type ProjectColumns struct {
	Columns []ColumnName
}

func (ProjectColumns) projectionNode() {}

func (p ProjectColumns) Names() []ColumnName { return p.Columns }

// ProjectConstructor restricts a select to rows tagged with Constructor
// before projecting Columns.
type ProjectConstructor struct {
	Constructor Constructor
	Columns     []ColumnName
}

func (ProjectConstructor) projectionNode() {}

func (p ProjectConstructor) Names() []ColumnName { return p.Columns }

// Select is a query against one table.
type Select struct {
	Table   TableName
	Columns Projection
	Where   Expression
}

// InsertValue is the payload of an insert.
// Sealed: only SingleValue and MultipleValue implement it.
type InsertValue interface {
	insertValueNode()
	Columns() Record
}

// SingleValue is a row for a SingleConstructor table.
type SingleValue struct {
	Values Record
}

func (SingleValue) insertValueNode() {}

func (v SingleValue) Columns() Record { return v.Values }

// MultipleValue is a row for a MultipleConstructors table, tagged with
// its constructor.
type MultipleValue struct {
	Constructor Constructor
	Values      Record
}

func (MultipleValue) insertValueNode() {}

func (v MultipleValue) Columns() Record { return v.Values }

// Insert writes one row under an int32 key.
type Insert struct {
	Table TableName
	Key   int32
	Value InsertValue
}
