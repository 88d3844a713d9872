package ir

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ColumnSet maps the columns of one row shape to their declared types.
type ColumnSet map[ColumnName]ScalarType

// Names returns the column names in lexical order.
func (cs ColumnSet) Names() []ColumnName {
	return slices.Sorted(maps.Keys(cs))
}

// Columns is the body of a table schema.
// Sealed: only SingleConstructor and MultipleConstructors implement it.
type Columns interface {
	columnsNode()
}

// SingleConstructor is a table with one fixed row shape.
type SingleConstructor struct {
	Columns ColumnSet
}

func (SingleConstructor) columnsNode() {}

// MultipleConstructors is a tagged union: each constructor has its own
// columns. Constructors may share, omit or disagree on column names.
type MultipleConstructors struct {
	Variants map[Constructor]ColumnSet
}

func (MultipleConstructors) columnsNode() {}

// Constructors returns the constructor names in lexical order. This is the
// order every cross-variant computation visits them in.
func (m MultipleConstructors) Constructors() []Constructor {
	return slices.Sorted(maps.Keys(m.Variants))
}

// Table is a named schema. Tables are persisted once per definition and
// replaced wholesale on redefinition; they are never mutated in place.
type Table struct {
	Name    TableName
	Columns Columns
}

// Validate checks structural rules the grammar enforces but programmatic
// construction might not.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	switch cols := t.Columns.(type) {
	case SingleConstructor:
		return validateColumnSet(t.Name, "", cols.Columns)
	case MultipleConstructors:
		if len(cols.Variants) == 0 {
			return fmt.Errorf("table %s: at least one constructor is required", t.Name)
		}
		for _, c := range cols.Constructors() {
			if c == "" {
				return fmt.Errorf("table %s: empty constructor name", t.Name)
			}
			if err := validateColumnSet(t.Name, c, cols.Variants[c]); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("table %s: columns are required", t.Name)
	default:
		return fmt.Errorf("table %s: unknown columns type %T", t.Name, t.Columns)
	}
}

func validateColumnSet(table TableName, c Constructor, cols ColumnSet) error {
	where := string(table)
	if c != "" {
		where = fmt.Sprintf("%s.%s", table, c)
	}
	if len(cols) == 0 {
		return fmt.Errorf("table %s: at least one column is required", where)
	}
	for name, typ := range cols {
		if name == "" {
			return fmt.Errorf("table %s: empty column name", where)
		}
		if name.Reserved() {
			return fmt.Errorf("table %s: column name %s is reserved", where, name)
		}
		if _, err := typ.MarshalText(); err != nil {
			return fmt.Errorf("table %s: column %s: %w", where, name, err)
		}
	}
	return nil
}

// tableJSON is the persisted shape of a Table. Exactly one of the two
// column fields is set.
type tableJSON struct {
	Name                 TableName                 `json:"name"`
	SingleConstructor    ColumnSet                 `json:"single_constructor,omitempty"`
	MultipleConstructors map[Constructor]ColumnSet `json:"multiple_constructors,omitempty"`
}

// MarshalJSON implements json.Marshaler for Table.
func (t Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Name: t.Name}
	switch cols := t.Columns.(type) {
	case SingleConstructor:
		out.SingleConstructor = cols.Columns
	case MultipleConstructors:
		out.MultipleConstructors = cols.Variants
	default:
		return nil, fmt.Errorf("table %s: unknown columns type %T", t.Name, t.Columns)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Table.
func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch {
	case in.SingleConstructor != nil && in.MultipleConstructors != nil:
		return fmt.Errorf("table %s: both single and multiple constructors present", in.Name)
	case in.SingleConstructor != nil:
		t.Columns = SingleConstructor{Columns: in.SingleConstructor}
	case in.MultipleConstructors != nil:
		t.Columns = MultipleConstructors{Variants: in.MultipleConstructors}
	default:
		return fmt.Errorf("table %s: no columns", in.Name)
	}
	t.Name = in.Name
	return nil
}
