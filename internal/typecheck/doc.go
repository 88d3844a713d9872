// Package typecheck validates selects and inserts against table schemas.
//
// All checks are pure functions of their inputs: the same tables and
// statement always produce the same result, and nothing is cached between
// calls.
//
// The interesting part is column resolution for tagged-union tables
// (Column). A column gets one type for the whole table:
//
//	present in every constructor, one type t  -> Mandatory t
//	present in some constructors, one type t  -> Optional t
//	present in no constructor                 -> COLUMN_NOT_FOUND
//	present with differing types              -> COLUMN_MISMATCH
//
// Constructors are visited in lexical order, so the reported left/right
// types of a mismatch are deterministic.
package typecheck
