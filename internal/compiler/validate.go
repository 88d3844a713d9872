package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/sumdb/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedColumns = "E100" // unknown Columns variant
	ErrInvalidTableName   = "E101" // table name is not a lowercase identifier
	ErrInvalidConstructor = "E102" // constructor is not an uppercase identifier
	ErrInvalidColumnName  = "E103" // column name is not a lowercase identifier
	ErrInvalidColumnType  = "E104" // column type is not Int, Bool or String
	ErrReservedColumn     = "E105" // column uses _type, true, false or null
	ErrEmptyColumns       = "E106" // table or constructor has no columns
	ErrNoConstructors     = "E107" // tagged union with no constructors
)

var (
	lowerIdent = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)
	upperIdent = regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*$`)
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks that t can be written in the definition language: every
// name is an identifier of the right case, every column has a scalar type,
// and no column is named _type. It returns all problems, in table,
// constructor, column order.
func Validate(t ir.Table) []ValidationError {
	var errs []ValidationError

	if !lowerIdent.MatchString(string(t.Name)) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("table name %q must start with a lowercase letter", t.Name),
			Code:    ErrInvalidTableName,
		})
	}

	switch cols := t.Columns.(type) {
	case ir.SingleConstructor:
		errs = append(errs, validateColumns("columns", cols.Columns)...)
	case ir.MultipleConstructors:
		if len(cols.Variants) == 0 {
			errs = append(errs, ValidationError{
				Field:   "constructors",
				Message: "at least one constructor is required",
				Code:    ErrNoConstructors,
			})
		}
		for _, c := range cols.Constructors() {
			field := "constructors." + string(c)
			if !upperIdent.MatchString(string(c)) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("constructor %q must start with an uppercase letter", c),
					Code:    ErrInvalidConstructor,
				})
			}
			errs = append(errs, validateColumns(field, cols.Variants[c])...)
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: fmt.Sprintf("unsupported columns type: %T", t.Columns),
			Code:    ErrUnsupportedColumns,
		})
	}

	return errs
}

func validateColumns(field string, cols ir.ColumnSet) []ValidationError {
	var errs []ValidationError

	if len(cols) == 0 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "at least one column is required",
			Code:    ErrEmptyColumns,
		})
	}

	for _, name := range cols.Names() {
		path := field + "." + string(name)
		switch {
		case name.Reserved():
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("column name %s is reserved", name),
				Code:    ErrReservedColumn,
			})
		case !lowerIdent.MatchString(string(name)):
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("column name %q must start with a lowercase letter", name),
				Code:    ErrInvalidColumnName,
			})
		}
		if _, err := cols[name].MarshalText(); err != nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: err.Error(),
				Code:    ErrInvalidColumnType,
			})
		}
	}

	return errs
}
