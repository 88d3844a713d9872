package typecheck

import (
	"fmt"
	"unicode/utf8"

	"github.com/roach88/sumdb/internal/ir"
)

// Scalar checks that value fits expected. Null fits only an Optional type;
// any other value must have the scalar kind at the bottom of expected.
// Strings must be valid UTF-8.
func Scalar(value ir.ScalarValue, expected ir.Type) error {
	if s, ok := value.(ir.StringValue); ok && !utf8.ValidString(string(s)) {
		return &TypeError{Code: ErrCodeInvalidUTF8, Raw: string(s)}
	}
	switch value.(type) {
	case ir.NullValue:
		if ir.IsOptional(expected) {
			return nil
		}
	case ir.StringValue, ir.BoolValue, ir.IntValue:
		if kind, _ := ir.KindOf(value); kind == ir.BaseScalar(expected) {
			return nil
		}
	default:
		return &TypeError{Code: ErrCodeUnknownScalarTypeForValue, Raw: fmt.Sprintf("%T", value)}
	}
	return &TypeError{Code: ErrCodeTypeMismatchInInput, Expected: expected, Value: value}
}

// ScalarFromAny converts a decoded JSON or YAML value for column, reporting
// values without a scalar kind as UNKNOWN_SCALAR_TYPE_FOR_VALUE.
func ScalarFromAny(column ir.ColumnName, v any) (ir.ScalarValue, error) {
	val, err := ir.ScalarFromAny(v)
	if err != nil {
		return nil, &TypeError{
			Code:   ErrCodeUnknownScalarTypeForValue,
			Column: column,
			Raw:    fmt.Sprintf("%v", v),
		}
	}
	return val, nil
}
