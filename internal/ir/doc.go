// Package ir provides the value, schema and statement types for sumdb.
//
// This package contains type definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Sum types are sealed interfaces using the marker method pattern, so that
// type switches in the type-checker and executor are exhaustive over a closed
// set of variants:
//
//   - ScalarValue: NullValue, StringValue, BoolValue, IntValue
//   - Type: Mandatory, Optional
//   - Columns: SingleConstructor, MultipleConstructors
//   - InsertValue: SingleValue, MultipleValue
//   - Expression: Literal, Comparison, BinaryFunction
//   - Projection: ProjectColumns, ProjectConstructor
//
// Key design constraints:
//   - Integers are int32 everywhere; floats never enter the model
//   - Null exists only to populate Optional columns
//   - Rows of tagged-union tables carry their constructor under TypeColumn
package ir
