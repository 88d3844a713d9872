package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema holds table definitions in statement form, run before setup.
	Schema string `yaml:"schema,omitempty"`

	// SchemaFiles lists CUE schema files to compile and define.
	// Relative paths are resolved against the scenario file's directory.
	SchemaFiles []string `yaml:"schema_files,omitempty"`

	// Setup contains statements that establish initial rows.
	// Setup statements must succeed.
	Setup []string `yaml:"setup,omitempty"`

	// Steps are the statements under test.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store contents.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step runs one statement and optionally checks its outcome.
type Step struct {
	Statement string `yaml:"statement"`

	// Expect is nil when any successful outcome is acceptable.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected error code (engine.CodeOf). Empty means the
	// statement must succeed.
	Error string `yaml:"error,omitempty"`

	// Rows are the exact projected rows of a select, in order.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Count is the expected number of rows of a select.
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the final store contents.
type Assertion struct {
	// Type is "row_count" or "final_state".
	Type string `yaml:"type"`

	Table string `yaml:"table"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Where selects the row to check (final_state). All fields must match.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state).
	// Subset match: only the listed columns are compared.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount   = "row_count"
	AssertFinalState = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Relative schema file
// paths are resolved against the directory holding path. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields (typos),
// or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, file := range scenario.SchemaFiles {
		if !filepath.IsAbs(file) {
			scenario.SchemaFiles[i] = filepath.Join(base, file)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, file := range s.SchemaFiles {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", file)
		}
	}

	for i, stmt := range s.Setup {
		if stmt == "" {
			return fmt.Errorf("setup[%d]: statement is required", i)
		}
	}

	for i, step := range s.Steps {
		if step.Statement == "" {
			return fmt.Errorf("steps[%d]: statement is required", i)
		}
		if e := step.Expect; e != nil && e.Error != "" && (e.Rows != nil || e.Count != nil) {
			return fmt.Errorf("steps[%d].expect: error cannot be combined with rows or count", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
