// Package server exposes a sumdb engine over HTTP with echo.
//
// Routes:
//
//	GET  /hc                  health check
//	GET  /metrics             prometheus metrics
//	GET  /tables              every table with its fingerprint
//	POST /tables              define a table ({"schema": "type ..."} or {"table": {...}})
//	GET  /tables/:table       one table
//	POST /tables/:table/rows  insert a row ({"key": 1, "constructor": "Dog", "values": {...}})
//	POST /query               run a script ({"statement": "select ..."})
//
// Errors are JSON APIError bodies carrying the engine error code. Writes
// are serialized; scripts made only of selects run concurrently.
package server
