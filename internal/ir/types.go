package ir

import "fmt"

// Type is the resolved type of a column as seen by a query.
// Sealed: only Mandatory and Optional implement it.
//
// The type-checker only ever produces Mandatory or Optional wrapping a
// Mandatory; deeper nesting is representable but never constructed.
type Type interface {
	typeNode()
	String() string
}

// Mandatory is a column every row has.
type Mandatory struct {
	Scalar ScalarType
}

func (Mandatory) typeNode() {}

func (t Mandatory) String() string { return t.Scalar.String() }

// Optional is a column a row may lack; its value is then null.
type Optional struct {
	Of Type
}

func (Optional) typeNode() {}

func (t Optional) String() string { return fmt.Sprintf("Optional(%s)", t.Of) }

// MandatoryOf returns the Mandatory type of s.
func MandatoryOf(s ScalarType) Type { return Mandatory{Scalar: s} }

// OptionalOf returns the Optional type wrapping the Mandatory type of s.
func OptionalOf(s ScalarType) Type { return Optional{Of: Mandatory{Scalar: s}} }

// BaseScalar unwraps Optional layers down to the scalar type.
func BaseScalar(t Type) ScalarType {
	for {
		switch tt := t.(type) {
		case Mandatory:
			return tt.Scalar
		case Optional:
			t = tt.Of
		default:
			panic(fmt.Sprintf("ir: unknown type %T", t))
		}
	}
}

// IsOptional reports whether t admits null.
func IsOptional(t Type) bool {
	_, ok := t.(Optional)
	return ok
}

// TypedColumn pairs a projected column with its resolved type.
type TypedColumn struct {
	Name ColumnName
	Type Type
}

func (c TypedColumn) String() string { return fmt.Sprintf("%s: %s", c.Name, c.Type) }
