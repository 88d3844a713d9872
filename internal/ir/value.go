package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ScalarType is the declared type of a column.
type ScalarType int

const (
	ScalarString ScalarType = iota
	ScalarBool
	ScalarInt
)

// String returns the schema spelling of the type ("String", "Bool", "Int").
func (t ScalarType) String() string {
	switch t {
	case ScalarString:
		return "String"
	case ScalarBool:
		return "Bool"
	case ScalarInt:
		return "Int"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
}

// ParseScalarType parses the schema spelling of a scalar type.
func ParseScalarType(s string) (ScalarType, error) {
	switch s {
	case "String":
		return ScalarString, nil
	case "Bool":
		return ScalarBool, nil
	case "Int":
		return ScalarInt, nil
	default:
		return 0, fmt.Errorf("unknown scalar type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ScalarType) MarshalText() ([]byte, error) {
	switch t {
	case ScalarString, ScalarBool, ScalarInt:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid scalar type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScalarType) UnmarshalText(data []byte) error {
	parsed, err := ParseScalarType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScalarValue is a sealed interface over the values a column can hold.
// Only NullValue, StringValue, BoolValue and IntValue implement it.
type ScalarValue interface {
	scalarValue()
}

// NullValue is the value of an Optional column that a row does not have.
type NullValue struct{}

func (NullValue) scalarValue() {}

// MarshalJSON implements json.Marshaler for NullValue.
func (NullValue) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (NullValue) String() string { return "null" }

// StringValue holds a String column value.
type StringValue string

func (StringValue) scalarValue() {}

// BoolValue holds a Bool column value.
type BoolValue bool

func (BoolValue) scalarValue() {}

// IntValue holds an Int column value. Always 32 bits.
type IntValue int32

func (IntValue) scalarValue() {}

// KindOf reports the scalar type of a non-null value.
// The second result is false for NullValue.
func KindOf(v ScalarValue) (ScalarType, bool) {
	switch v.(type) {
	case StringValue:
		return ScalarString, true
	case BoolValue:
		return ScalarBool, true
	case IntValue:
		return ScalarInt, true
	default:
		return 0, false
	}
}

// FormatValue renders a value the way it is written in statements.
func FormatValue(v ScalarValue) string {
	switch val := v.(type) {
	case NullValue:
		return "null"
	case StringValue:
		return fmt.Sprintf("%q", string(val))
	case BoolValue:
		if val {
			return "true"
		}
		return "false"
	case IntValue:
		return fmt.Sprintf("%d", int32(val))
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// ErrUnsupportedValue is returned when a decoded value has no scalar kind
// (floats, arrays, objects, out of range integers).
var ErrUnsupportedValue = errors.New("unsupported scalar value")

// ScalarFromAny converts a decoded JSON or YAML value to a ScalarValue.
// Integral numbers must fit in 32 bits.
func ScalarFromAny(v any) (ScalarValue, error) {
	switch val := v.(type) {
	case nil:
		return NullValue{}, nil
	case ScalarValue:
		return val, nil
	case string:
		return StringValue(val), nil
	case bool:
		return BoolValue(val), nil
	case int:
		return intFrom(int64(val))
	case int32:
		return IntValue(val), nil
	case int64:
		return intFrom(val)
	case uint64:
		if val > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d out of int32 range", ErrUnsupportedValue, val)
		}
		return IntValue(int32(val)), nil
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("%w: float %v", ErrUnsupportedValue, val)
		}
		return intFrom(int64(val))
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("%w: float %s", ErrUnsupportedValue, s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, s)
		}
		return intFrom(n)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func intFrom(n int64) (ScalarValue, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d out of int32 range", ErrUnsupportedValue, n)
	}
	return IntValue(int32(n)), nil
}

// unmarshalScalar decodes one JSON value into a ScalarValue.
// Numbers are read through json.Number so large values are not rounded.
func unmarshalScalar(data []byte) (ScalarValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return ScalarFromAny(raw)
}

// Record is a row: column values keyed by column name. Stored rows of
// tagged-union tables also hold their constructor under TypeColumn.
type Record map[ColumnName]ScalarValue

// Get returns the value of a column, or NullValue if the row lacks it.
func (r Record) Get(column ColumnName) ScalarValue {
	if v, ok := r[column]; ok && v != nil {
		return v
	}
	return NullValue{}
}

// MarshalJSON encodes the record as canonical JSON.
func (r Record) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(r)
}

// UnmarshalJSON decodes a JSON object of scalar values.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = make(Record, len(raw))
	for k, v := range raw {
		val, err := unmarshalScalar(v)
		if err != nil {
			return fmt.Errorf("record column %q: %w", k, err)
		}
		(*r)[ColumnName(k)] = val
	}
	return nil
}
