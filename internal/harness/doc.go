// Package harness runs conformance scenarios against a fresh sumdb store.
//
// A scenario defines tables, seeds rows, runs statements and checks what
// each statement returned, then asserts on the final contents of the store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: pet_optional_columns
//	description: "likes_stick exists only on Dog"
//	schema: |
//	  type pet { Cat { age: Int, name: String }, Dog { age: Int, name: String, likes_stick: Bool } }
//	schema_files:
//	  - schemas/user.cue
//	setup:
//	  - insert into pet 1 Cat { age: 27, name: "Mr Cat" }
//	steps:
//	  - statement: select pet { name, likes_stick }
//	    expect:
//	      rows:
//	        - { name: "Mr Cat", likes_stick: null }
//	  - statement: select pet { wings }
//	    expect:
//	      error: COLUMN_NOT_FOUND
//	assertions:
//	  - type: row_count
//	    table: pet
//	    count: 1
//	  - type: final_state
//	    table: pet
//	    where: { name: "Mr Cat" }
//	    expect: { age: 27 }
//
// schema and setup must succeed; a failure there aborts the scenario.
// schema_files are CUE files resolved relative to the scenario file.
//
// # Assertion Types
//
//   - row_count: the table holds exactly count rows
//   - final_state: the first row matching where has the expect values
//
// # Deterministic Testing
//
// Every scenario runs against its own in-memory SQLite store with logging
// discarded, so identical scenarios produce identical step results. Golden
// snapshots of those results are compared with goldie:
//
//	go test ./internal/harness -update
package harness
