package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/sumdb/internal/compiler"
	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
	"github.com/roach88/sumdb/internal/store"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Define tables from schema_files and schema
// 3. Execute setup statements
// 4. Execute steps and check their expect clauses
// 5. Evaluate assertions against the final store
//
// A non-nil error means the scenario could not be run at all; failed
// expectations are reported through Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.KindSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store:  st,
		engine: engine.New(st, engine.WithLogger(logger)),
		logger: logger,
	}

	ctx := context.Background()

	if err := h.defineSchema(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to define schema: %w", err)
	}
	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	for _, errMsg := range EvaluateAssertions(ctx, h.engine, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// defineSchema compiles the schema files, then runs the inline schema.
func (h *Harness) defineSchema(ctx context.Context, scenario *Scenario) error {
	for _, path := range scenario.SchemaFiles {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read schema file: %w", err)
		}
		tables, err := compiler.CompileString(string(src), path)
		if err != nil {
			return err
		}
		for _, t := range tables {
			if _, err := h.engine.DefineTable(ctx, t); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	if scenario.Schema == "" {
		return nil
	}
	_, err := h.engine.ExecScript(ctx, scenario.Schema)
	return err
}

// executeSetup runs all setup statements. Any failure aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []string) error {
	for i, src := range setup {
		if _, err := h.engine.ExecScript(ctx, src); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		h.logger.Debug("setup statement completed", "step", i)
	}
	return nil
}

// executeSteps runs each step and checks it against its expect clause.
// A failing statement does not stop later steps.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		var (
			out engine.Outcome
			err error
		)
		stmt, err := parser.ParseStatement(step.Statement)
		if err == nil {
			out, err = h.engine.Exec(ctx, stmt)
		}

		sr := newStepResult(step.Statement, out, err)
		result.Steps = append(result.Steps, sr)

		for _, msg := range checkExpect(step.Expect, sr, err) {
			result.AddError(fmt.Sprintf("steps[%d] %q: %s", i, step.Statement, msg))
		}

		h.logger.Debug("step completed",
			"step", i,
			"kind", sr.Kind,
			"error", sr.Error,
		)
	}
}

// checkExpect compares a step result with its expect clause.
func checkExpect(expect *Expect, sr StepResult, err error) []string {
	var wantErr string
	if expect != nil {
		wantErr = expect.Error
	}

	switch {
	case err != nil && wantErr == "":
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	case err != nil && sr.Error != wantErr:
		return []string{fmt.Sprintf("expected error %s, got %s: %v", wantErr, sr.Error, err)}
	case err != nil:
		return nil
	case wantErr != "":
		return []string{fmt.Sprintf("expected error %s, statement succeeded", wantErr)}
	case expect == nil:
		return nil
	}

	var msgs []string
	if expect.Count != nil && len(sr.Rows) != *expect.Count {
		msgs = append(msgs, fmt.Sprintf("expected %d rows, got %d", *expect.Count, len(sr.Rows)))
	}
	if expect.Rows != nil {
		if msg := compareRows(expect.Rows, sr.Rows); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// compareRows compares expected rows with actual ones through their
// canonical encodings, so 27 in YAML equals IntValue(27) and a YAML null
// equals NullValue.
func compareRows(expected []map[string]any, actual []engine.Result) string {
	want := make([]any, len(expected))
	for i, row := range expected {
		want[i] = row
	}
	got := make([]any, len(actual))
	for i, r := range actual {
		got[i] = r.Row
	}

	wantJSON, err := ir.MarshalCanonical(want)
	if err != nil {
		return fmt.Sprintf("invalid expected rows: %v", err)
	}
	gotJSON, err := ir.MarshalCanonical(got)
	if err != nil {
		return fmt.Sprintf("unencodable rows: %v", err)
	}
	if !bytes.Equal(wantJSON, gotJSON) {
		return fmt.Sprintf("rows mismatch:\n  expected: %s\n  actual:   %s", wantJSON, gotJSON)
	}
	return ""
}
