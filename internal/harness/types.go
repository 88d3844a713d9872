package harness

import "github.com/roach88/sumdb/internal/engine"

// StepResult is what one step's statement produced.
type StepResult struct {
	Statement string `json:"statement"`

	// Kind is "define", "insert" or "select"; empty when the statement failed.
	Kind string `json:"kind,omitempty"`

	Table    string          `json:"table,omitempty"`
	Inserted int             `json:"inserted,omitempty"`
	Columns  []string        `json:"columns,omitempty"`
	Rows     []engine.Result `json:"rows,omitempty"`

	// Error is the error code of a failed statement.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func newStepResult(stmt string, out engine.Outcome, err error) StepResult {
	sr := StepResult{Statement: stmt}
	if err != nil {
		sr.Error = engine.CodeOf(err)
		return sr
	}
	sr.Kind = out.Kind
	sr.Table = string(out.Table)
	sr.Inserted = out.Inserted
	for _, c := range out.Columns {
		sr.Columns = append(sr.Columns, string(c))
	}
	sr.Rows = out.Rows
	return sr
}
