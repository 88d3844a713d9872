package ir

// TableName names a table. Table names start with a letter.
type TableName string

// ColumnName names a column. Column names start with a lowercase letter.
type ColumnName string

// Constructor names one variant of a tagged-union table.
// Constructors start with an uppercase letter.
type Constructor string

func (n TableName) String() string   { return string(n) }
func (n ColumnName) String() string  { return string(n) }
func (c Constructor) String() string { return string(c) }

// TypeColumn is the reserved column holding the constructor of a stored row
// that belongs to a tagged-union table. It can never be declared by a schema.
const TypeColumn ColumnName = "_type"

// Reserved reports whether n can never be declared as a column: TypeColumn,
// and the literal words true, false and null, which a where clause would
// read as values rather than column references.
func (n ColumnName) Reserved() bool {
	switch n {
	case TypeColumn, "true", "false", "null":
		return true
	}
	return false
}
