package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
	"github.com/roach88/sumdb/internal/store"
	"github.com/roach88/sumdb/internal/typecheck"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeTableNotFound indicates the statement names an undefined table.
	ErrCodeTableNotFound ErrorCode = "TABLE_NOT_FOUND"

	// ErrCodeTypeError indicates the statement does not fit the schema.
	// Err is a *typecheck.TypeError.
	ErrCodeTypeError ErrorCode = "TYPE_ERROR"

	// ErrCodeStorage indicates a backend failure or undecodable stored data.
	// Err is a *store.StorageError.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"

	// ErrCodeInvalidSchema indicates a table definition failed validation.
	ErrCodeInvalidSchema ErrorCode = "INVALID_SCHEMA"
)

// SelectError is returned by Engine.Select.
type SelectError struct {
	Code  ErrorCode
	Table ir.TableName
	Err   error
}

func (e *SelectError) Error() string {
	return formatError("select "+string(e.Table), e.Code, e.Err)
}

func (e *SelectError) Unwrap() error { return e.Err }

// InsertError is returned by Engine.Insert.
type InsertError struct {
	Code  ErrorCode
	Table ir.TableName
	Key   int32
	Err   error
}

func (e *InsertError) Error() string {
	return formatError(fmt.Sprintf("insert %s key %d", e.Table, e.Key), e.Code, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// DefineError is returned by Engine.DefineTable.
type DefineError struct {
	Code  ErrorCode
	Table ir.TableName
	Err   error
}

func (e *DefineError) Error() string {
	return formatError("define "+string(e.Table), e.Code, e.Err)
}

func (e *DefineError) Unwrap() error { return e.Err }

func formatError(op string, code ErrorCode, err error) string {
	if err == nil {
		return fmt.Sprintf("%s: %s", op, code)
	}
	return fmt.Sprintf("%s: %s: %v", op, code, err)
}

// Codes returned by CodeOf besides the ErrorCode and typecheck codes.
const (
	CodeParseError = "PARSE_ERROR"
	CodeInternal   = "INTERNAL"
)

// CodeOf returns the most specific code for err: the typecheck code for a
// type error, STORAGE_ERROR, TABLE_NOT_FOUND, INVALID_SCHEMA, PARSE_ERROR,
// or INTERNAL for anything else. It returns "" for a nil error.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	var te *typecheck.TypeError
	if errors.As(err, &te) {
		return string(te.Code)
	}
	var se *store.StorageError
	if errors.As(err, &se) {
		return string(ErrCodeStorage)
	}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return CodeParseError
	}

	var (
		selErr *SelectError
		insErr *InsertError
		defErr *DefineError
	)
	switch {
	case errors.As(err, &selErr):
		return string(selErr.Code)
	case errors.As(err, &insErr):
		return string(insErr.Code)
	case errors.As(err, &defErr):
		return string(defErr.Code)
	}
	return CodeInternal
}
