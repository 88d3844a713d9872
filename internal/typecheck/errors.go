package typecheck

import (
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// TypeError reports a statement that does not fit its table's schema.
//
// Only the fields relevant to Code are set.
type TypeError struct {
	// Code identifies the error category.
	Code ErrorCode

	Table       ir.TableName
	Column      ir.ColumnName
	Constructor ir.Constructor

	// Left and Right are the conflicting declarations of a COLUMN_MISMATCH.
	Left  ir.ScalarType
	Right ir.ScalarType

	// Expected and Value describe a value that does not fit its column.
	Expected ir.Type
	Value    ir.ScalarValue

	// Raw describes an input that has no scalar kind at all.
	Raw string
}

// ErrorCode categorizes type errors.
type ErrorCode string

const (
	ErrCodeTableNotFound                      ErrorCode = "TABLE_NOT_FOUND"
	ErrCodeColumnNotFound                     ErrorCode = "COLUMN_NOT_FOUND"
	ErrCodeColumnMismatch                     ErrorCode = "COLUMN_MISMATCH"
	ErrCodeMissingColumnInInput               ErrorCode = "MISSING_COLUMN_IN_INPUT"
	ErrCodeTypeMismatchInInput                ErrorCode = "TYPE_MISMATCH_IN_INPUT"
	ErrCodeUnknownScalarTypeForValue          ErrorCode = "UNKNOWN_SCALAR_TYPE_FOR_VALUE"
	ErrCodeConstructorNotSpecified            ErrorCode = "CONSTRUCTOR_NOT_SPECIFIED"
	ErrCodeConstructorSpecifiedButNotRequired ErrorCode = "CONSTRUCTOR_SPECIFIED_BUT_NOT_REQUIRED"
	ErrCodeConstructorNotFound                ErrorCode = "CONSTRUCTOR_NOT_FOUND"
	ErrCodeComparisonTypeMismatch             ErrorCode = "COMPARISON_TYPE_MISMATCH"
	ErrCodeInvalidUTF8                        ErrorCode = "INVALID_UTF8"
)

// Error implements the error interface.
func (e *TypeError) Error() string {
	switch e.Code {
	case ErrCodeTableNotFound:
		return fmt.Sprintf("%s: table %s not found", e.Code, e.Table)
	case ErrCodeColumnNotFound:
		return fmt.Sprintf("%s: column %s not found in table %s", e.Code, e.Column, e.Table)
	case ErrCodeColumnMismatch:
		return fmt.Sprintf("%s: type mismatch in column %s in table %s: %s vs %s",
			e.Code, e.Column, e.Table, e.Left, e.Right)
	case ErrCodeMissingColumnInInput:
		return fmt.Sprintf("%s: missing column %s when inserting into table %s", e.Code, e.Column, e.Table)
	case ErrCodeTypeMismatchInInput:
		if e.Column != "" {
			return fmt.Sprintf("%s: column %s expected type %s but found value %s",
				e.Code, e.Column, e.Expected, ir.FormatValue(e.Value))
		}
		return fmt.Sprintf("%s: expected type %s but found value %s", e.Code, e.Expected, ir.FormatValue(e.Value))
	case ErrCodeUnknownScalarTypeForValue:
		return fmt.Sprintf("%s: unknown scalar type for value %s", e.Code, e.Raw)
	case ErrCodeConstructorNotSpecified:
		return fmt.Sprintf("%s: constructor not specified for table %s", e.Code, e.Table)
	case ErrCodeConstructorSpecifiedButNotRequired:
		return fmt.Sprintf("%s: constructor %s specified for table %s but it is not required",
			e.Code, e.Constructor, e.Table)
	case ErrCodeConstructorNotFound:
		return fmt.Sprintf("%s: constructor %s not found in table %s", e.Code, e.Constructor, e.Table)
	case ErrCodeComparisonTypeMismatch:
		return fmt.Sprintf("%s: column %s in table %s has type %s and cannot equal %s",
			e.Code, e.Column, e.Table, e.Expected, ir.FormatValue(e.Value))
	case ErrCodeInvalidUTF8:
		if e.Column != "" {
			return fmt.Sprintf("%s: column %s has a string value that is not valid UTF-8: %q", e.Code, e.Column, e.Raw)
		}
		return fmt.Sprintf("%s: string value is not valid UTF-8: %q", e.Code, e.Raw)
	default:
		return fmt.Sprintf("%s: table %s", e.Code, e.Table)
	}
}

// Is matches another *TypeError with the same code, so callers can write
// errors.Is(err, &TypeError{Code: ErrCodeColumnNotFound}).
func (e *TypeError) Is(target error) bool {
	t, ok := target.(*TypeError)
	return ok && t.Code == e.Code
}
