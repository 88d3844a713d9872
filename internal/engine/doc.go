// Package engine executes statements against a store.
//
// Every operation follows the same path:
//
//  1. Read the table schema through the store (never cached, so a
//     redefinition is seen by the next statement).
//  2. Type-check the statement against it (package typecheck).
//  3. Write the row, or scan the table's rows in key order, evaluate the
//     filter on each and project the requested columns.
//
// Execution is synchronous and single-threaded per call. The engine holds
// no locks; callers that share an Engine between goroutines serialize
// access themselves (see package server).
//
// Failures come back as *DefineError, *InsertError or *SelectError, each
// wrapping the *typecheck.TypeError or *store.StorageError that caused it.
// CodeOf reduces any of them to a stable string code.
package engine
