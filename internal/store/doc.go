// Package store persists table schemas and rows in an ordered key/value
// store.
//
// # Key Layout
//
//	table_<name>          canonical JSON of the ir.Table
//	data_<table>_<key>    canonical JSON of the row's declared columns,
//	                      plus "_type" for rows of a tagged-union table
//
// Keys compare as raw bytes, so rows of a table come back from a scan in
// lexical key order: data_user_10 sorts before data_user_2.
//
// # Backends
//
//   - SQLiteBackend: a single WITHOUT ROWID table keyed by BLOB. Prefix scans
//     are half-open range queries, so they use the primary key index.
//   - BoltBackend: a single bbolt bucket; prefix scans seek a cursor.
//
// Nothing here panics on stored data. Undecodable values, I/O failures and
// keys that do not fit the layout surface as *StorageError.
package store
