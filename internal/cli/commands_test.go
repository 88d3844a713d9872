package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
	"github.com/roach88/sumdb/internal/testutil"
)

// seedUsers defines the user table and inserts three rows.
func seedUsers(t *testing.T, db string) {
	t.Helper()
	mustExecute(t, db, "define", testutil.UserSchema)
	mustExecute(t, db, "insert", "user", "1", "--values", `{"age": 27, "nice": false, "name": "Egg"}`)
	mustExecute(t, db, "insert", "user", "2", "--values", `{"age": 100, "nice": true, "name": "Horse"}`)
	mustExecute(t, db, "insert", "user", "3", "--values", `{"age": 46, "nice": false, "name": "Log"}`)
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestDefineText(t *testing.T) {
	out := mustExecute(t, testDB(t), "define", testutil.UserSchema, testutil.PetSchema)

	userFP := ir.MustTableFingerprint(testutil.UserTable())
	petFP := ir.MustTableFingerprint(testutil.PetTable())
	assert.Equal(t,
		"Defined table user (fingerprint "+userFP[:12]+")\n"+
			"Defined table pet (fingerprint "+petFP[:12]+")\n",
		out)
}

func TestDefineJSON(t *testing.T) {
	out := mustExecute(t, testDB(t), "--format", "json", "define", testutil.PetSchema)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []any{
		map[string]any{
			"table":       "pet",
			"fingerprint": ir.MustTableFingerprint(testutil.PetTable()),
		},
	}, resp.Data)
}

func TestDefineFromCUEFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
table: user: {
	age:  int
	nice: bool
	name: string
}
`), 0644))

	db := testDB(t)
	out := mustExecute(t, db, "define", "--file", path)
	assert.Contains(t, out, "Defined table user")

	// CUE and text definitions of the same table agree.
	out = mustExecute(t, db, "--format", "json", "describe", "user")
	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, ir.MustTableFingerprint(testutil.UserTable()), data["fingerprint"])
}

func TestDefineParseError(t *testing.T) {
	out, err := execute(t, testDB(t), "define", "type user { age: Float }")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, out, "Error [PARSE_ERROR]")
}

func TestDefineNothing(t *testing.T) {
	_, err := execute(t, testDB(t), "define")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDefineMissingFile(t *testing.T) {
	out, err := execute(t, testDB(t), "define", "--file", "/nonexistent/schema.cue")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
}

func TestInsertAndSelect(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	out := mustExecute(t, db, "select", "name, age from user where nice = false")
	assert.Equal(t, "# | name | age\n1 | \"Egg\" | 27\n2 | \"Log\" | 46\n(2 rows)\n", out)

	// The select keyword is optional and arguments are joined.
	out = mustExecute(t, db, "select", "select", "name", "from", "user", "where", "nice", "=", "true")
	assert.Equal(t, "# | name\n1 | \"Horse\"\n(1 row)\n", out)
}

func TestInsertReplacesKey(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	mustExecute(t, db, "insert", "user", "2", "--values", `{"age": 5, "nice": false, "name": "Pony"}`)
	out := mustExecute(t, db, "select", "name from user")
	assert.Equal(t, "# | name\n1 | \"Egg\"\n2 | \"Pony\"\n3 | \"Log\"\n(3 rows)\n", out)
}

func TestInsertJSON(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "define", testutil.UserSchema)

	// "--" keeps the negative key from being read as a flag.
	out := mustExecute(t, db, "--format", "json", "insert",
		"--values", `{"age": 1, "nice": true, "name": "Neg"}`, "--", "user", "-4")
	resp := decodeResponse(t, out)
	assert.Equal(t, map[string]any{"table": "user", "key": float64(-4), "inserted": float64(1)}, resp.Data)
}

func TestInsertConstructor(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "define", testutil.PetSchema)
	mustExecute(t, db, "insert", "pet", "1", "-c", "Cat", "--values", `{"age": 27, "name": "Mr Cat"}`)
	mustExecute(t, db, "insert", "pet", "2", "-c", "Dog", "--values", `{"age": 3, "name": "Rex", "likes_stick": true}`)

	out := mustExecute(t, db, "select", "Dog { name, likes_stick } from pet")
	assert.Equal(t, "# | name | likes_stick\n1 | \"Rex\" | true\n(1 row)\n", out)

	out = mustExecute(t, db, "select", "name, likes_stick from pet")
	assert.Equal(t, "# | name | likes_stick\n1 | \"Mr Cat\" | null\n2 | \"Rex\" | true\n(2 rows)\n", out)
}

func TestInsertRejected(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "define", testutil.UserSchema, testutil.PetSchema)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"wrong_type", []string{"user", "1", "--values", `{"age": "old", "nice": true, "name": "X"}`}, "TYPE_MISMATCH_IN_INPUT"},
		{"missing_column", []string{"user", "1", "--values", `{"age": 1, "name": "X"}`}, "MISSING_COLUMN_IN_INPUT"},
		{"unknown_table", []string{"plant", "1", "--values", `{"age": 1}`}, "TABLE_NOT_FOUND"},
		{"missing_constructor", []string{"pet", "1", "--values", `{"age": 1, "name": "X"}`}, "CONSTRUCTOR_NOT_SPECIFIED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, db, append([]string{"insert"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}

	out := mustExecute(t, db, "select", "name from user")
	assert.Equal(t, "# | name\n(0 rows)\n", out)
}

func TestInsertBadArguments(t *testing.T) {
	db := testDB(t)

	tests := []struct {
		name string
		args []string
	}{
		{"key_not_int", []string{"user", "one"}},
		{"key_overflow", []string{"user", "2147483648"}},
		{"values_not_object", []string{"user", "1", "--values", `[1, 2]`}},
		{"float_value", []string{"user", "1", "--values", `{"age": 1.5}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, db, append([]string{"insert"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestSelectErrors(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	tests := []struct {
		query string
		code  string
	}{
		{"wings from user", "COLUMN_NOT_FOUND"},
		{"name from user where age = \"old\"", "COMPARISON_TYPE_MISMATCH"},
		{"name from plant", "TABLE_NOT_FOUND"},
		{"name user", "PARSE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			out, err := execute(t, db, "select", tt.query)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestSelectOrdinalsCountMatchingRows(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	// Log is the third row of the table but the second match.
	out := mustExecute(t, db, "select", "name from user where nice = false")
	assert.Equal(t, "# | name\n1 | \"Egg\"\n2 | \"Log\"\n(2 rows)\n", out)

	help := mustExecute(t, db, "select", "--help")
	assert.Contains(t, help, "position among the matching rows, in key order")
	assert.NotContains(t, help, "in the table's key order")
}

func TestSelectJSON(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	out := mustExecute(t, db, "--format", "json", "select", "name from user where age = 46")
	resp := decodeResponse(t, out)
	assert.Equal(t, map[string]any{
		"kind":    "select",
		"table":   "user",
		"columns": []any{"name"},
		"rows": []any{
			map[string]any{"ordinal": float64(1), "row": map[string]any{"name": "Log"}},
		},
	}, resp.Data)
}

func TestSelectErrorJSON(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db)

	out, err := execute(t, db, "--format", "json", "select", "wings from user")
	require.Error(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "COLUMN_NOT_FOUND", resp.Error.Code)
}

func TestExecScript(t *testing.T) {
	db := testDB(t)

	out := mustExecute(t, db, "exec",
		`type t { n: Int }; insert into t 2 { n: 20 }; insert into t 1 { n: 10 }; select n from t`)
	assert.Equal(t,
		"Defined table t (fingerprint "+ir.MustTableFingerprint(ir.Table{
			Name:    "t",
			Columns: ir.SingleConstructor{Columns: ir.ColumnSet{"n": ir.ScalarInt}},
		})[:12]+")\n"+
			"Inserted 1 row into t\n"+
			"Inserted 1 row into t\n"+
			"# | n\n1 | 10\n2 | 20\n(2 rows)\n",
		out)
}

func TestExecStopsAtFailure(t *testing.T) {
	db := testDB(t)

	out, err := execute(t, db, "exec",
		`type t { n: Int }; insert into t 1 { n: 1 }; select x from t; insert into t 2 { n: 2 }`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Inserted 1 row into t\n")
	assert.Contains(t, out, "Error [COLUMN_NOT_FOUND]: statement 3:")

	// Statements before the failure stay applied, later ones never ran.
	out = mustExecute(t, db, "select", "n from t")
	assert.Equal(t, "# | n\n1 | 1\n(1 row)\n", out)
}

func TestExecFromStdinAndFile(t *testing.T) {
	db := testDB(t)

	out, err := executeWithInput(t, db, "type t { n: Int };\ninsert into t 1 { n: 5 }\n", "exec")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 1 row into t")

	path := filepath.Join(t.TempDir(), "q.sumdb")
	require.NoError(t, os.WriteFile(path, []byte("select n from t"), 0644))
	out = mustExecute(t, db, "exec", "--file", path)
	assert.Equal(t, "# | n\n1 | 5\n(1 row)\n", out)

	_, err = execute(t, db, "exec", "--file", path, "select n from t")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecJSON(t *testing.T) {
	db := testDB(t)

	out := mustExecute(t, db, "--format", "json", "exec", `type t { n: Int }; insert into t 1 { n: 5 }`)
	resp := decodeResponse(t, out)
	results := resp.Data.(map[string]any)["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "define", results[0].(map[string]any)["kind"])
	assert.Equal(t, map[string]any{"kind": "insert", "table": "t", "inserted": float64(1)}, results[1])
}

func TestTablesAndDescribe(t *testing.T) {
	db := testDB(t)

	assert.Equal(t, "No tables defined.\n", mustExecute(t, db, "tables"))

	mustExecute(t, db, "define", testutil.UserSchema, testutil.PetSchema)
	assert.Equal(t, "pet\nuser\n", mustExecute(t, db, "tables"))

	out := mustExecute(t, db, "describe", "pet")
	assert.Equal(t,
		parser.FormatTable(testutil.PetTable())+"\nfingerprint: "+ir.MustTableFingerprint(testutil.PetTable())+"\n",
		out)
}

func TestDescribeUnknownTable(t *testing.T) {
	out, err := execute(t, testDB(t), "describe", "plant")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [TABLE_NOT_FOUND]: table plant not found")
}

func TestTablesJSON(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "define", testutil.UserSchema)

	resp := decodeResponse(t, mustExecute(t, db, "--format", "json", "tables"))
	assert.Equal(t, []any{
		map[string]any{
			"name":        "user",
			"fingerprint": ir.MustTableFingerprint(testutil.UserTable()),
			"schema":      "type user { age: Int, name: String, nice: Bool }",
		},
	}, resp.Data)
}
