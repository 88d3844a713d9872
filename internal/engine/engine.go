package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/store"
)

// Engine runs definitions, inserts and selects against a Store.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefineTable validates t and stores it, replacing any earlier definition
// of the same name. Rows already stored are left as they are. It returns
// the table's fingerprint.
func (e *Engine) DefineTable(ctx context.Context, t ir.Table) (string, error) {
	if err := t.Validate(); err != nil {
		return "", &DefineError{Code: ErrCodeInvalidSchema, Table: t.Name, Err: err}
	}
	fp, err := ir.TableFingerprint(t)
	if err != nil {
		return "", &DefineError{Code: ErrCodeInvalidSchema, Table: t.Name, Err: err}
	}

	prev, existed, err := e.store.LookupTable(ctx, t.Name)
	if err != nil {
		// An undecodable old schema is about to be replaced anyway.
		e.logger.Warn("previous table definition unreadable",
			"table", t.Name,
			"error", err)
		existed = false
	}

	if err := e.store.PutTable(ctx, t); err != nil {
		return "", &DefineError{Code: ErrCodeStorage, Table: t.Name, Err: err}
	}

	switch {
	case !existed:
		e.logger.Debug("table defined", "table", t.Name, "fingerprint", fp)
	default:
		if prevFP, _ := ir.TableFingerprint(prev); prevFP != fp {
			e.logger.Info("table redefined",
				"table", t.Name,
				"old_fingerprint", prevFP,
				"new_fingerprint", fp)
		}
	}
	return fp, nil
}

// LookupTable returns the current schema of name.
func (e *Engine) LookupTable(ctx context.Context, name ir.TableName) (ir.Table, bool, error) {
	return e.store.LookupTable(ctx, name)
}

// ListTables returns every defined table ordered by name.
func (e *Engine) ListTables(ctx context.Context) ([]ir.Table, error) {
	return e.store.ListTables(ctx)
}

// Check verifies the database file and that every stored schema and row
// decodes.
func (e *Engine) Check(ctx context.Context) (store.CheckReport, error) {
	report, err := e.store.Check(ctx)
	if err != nil {
		e.logger.Error("database check failed", "error", err)
		return report, err
	}
	e.logger.Debug("database check passed", "tables", report.Tables, "rows", report.Rows)
	return report, nil
}
