package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sumdb/internal/ir"
)

// Snapshot captures the step results of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Steps        []StepResult `json:"steps"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Empty fields are left out the same way the json tags do.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		m := map[string]any{"statement": step.Statement}
		if step.Kind != "" {
			m["kind"] = step.Kind
		}
		if step.Table != "" {
			m["table"] = step.Table
		}
		if step.Inserted != 0 {
			m["inserted"] = step.Inserted
		}
		if len(step.Columns) > 0 {
			cols := make([]any, len(step.Columns))
			for j, c := range step.Columns {
				cols[j] = c
			}
			m["columns"] = cols
		}
		if step.Kind == "select" {
			rows := make([]any, len(step.Rows))
			for j, r := range step.Rows {
				rows[j] = map[string]any{"ordinal": r.Ordinal, "row": r.Row}
			}
			m["rows"] = rows
		}
		if step.Error != "" {
			m["error"] = step.Error
		}
		steps[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
	}
}

// MarshalSnapshot returns the canonical JSON of a scenario's step results.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Steps: result.Steps}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its step results against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass, or an error if the
// scenario could not run. Test failure (via goldie) occurs if the results
// don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
