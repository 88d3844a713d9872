package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// testDB returns a fresh database path inside the test's temp dir.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "sumdb.db")
}

// execute runs the root command against db and returns its stdout.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, db, "", args...)
}

func executeWithInput(t *testing.T, db, input string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--db", db, "--backend", "sqlite"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// mustExecute runs the root command and fails the test on error.
func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, db, args...)
	if err != nil {
		t.Fatalf("sumdb %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}
