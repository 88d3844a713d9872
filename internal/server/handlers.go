package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roach88/sumdb/internal/compiler"
	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/parser"
)

type (
	tableInfo struct {
		Name        ir.TableName `json:"name"`
		Fingerprint string       `json:"fingerprint"`
		// Schema is the table in statement form.
		Schema string   `json:"schema"`
		Table  ir.Table `json:"table"`
	}

	// defineRequest carries a table either in statement form or as JSON.
	defineRequest struct {
		Schema string    `json:"schema" validate:"required_without=Table"`
		Table  *ir.Table `json:"table" validate:"required_without=Schema"`
	}

	insertRequest struct {
		Key         *int32         `json:"key" validate:"required"`
		Constructor ir.Constructor `json:"constructor"`
		Values      ir.Record      `json:"values" validate:"required"`
	}

	insertResponse struct {
		Table    ir.TableName `json:"table"`
		Key      int32        `json:"key"`
		Inserted int          `json:"inserted"`
	}

	queryRequest struct {
		Statement string `json:"statement" validate:"required"`
	}

	queryResponse struct {
		Results []engine.Outcome `json:"results"`
	}
)

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newTableInfo(t ir.Table) (tableInfo, error) {
	fp, err := ir.TableFingerprint(t)
	if err != nil {
		return tableInfo{}, err
	}
	return tableInfo{Name: t.Name, Fingerprint: fp, Schema: parser.FormatTable(t), Table: t}, nil
}

func (s *HTTPServer) ListTables(c *CustomContext) error {
	s.mu.RLock()
	tables, err := s.engine.ListTables(c.Request().Context())
	s.mu.RUnlock()
	if err != nil {
		return engineError(err)
	}

	infos := make([]tableInfo, 0, len(tables))
	for _, t := range tables {
		info, err := newTableInfo(t)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}
	return c.JSON(http.StatusOK, infos)
}

func (s *HTTPServer) DescribeTable(c *CustomContext) error {
	name := ir.TableName(c.Param("table"))

	s.mu.RLock()
	t, ok, err := s.engine.LookupTable(c.Request().Context(), name)
	s.mu.RUnlock()
	if err != nil {
		return engineError(err)
	}
	if !ok {
		return &APIError{
			Status:  http.StatusNotFound,
			Code:    string(engine.ErrCodeTableNotFound),
			Message: fmt.Sprintf("table %s is not defined", name),
		}
	}

	info, err := newTableInfo(t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (s *HTTPServer) DefineTable(c *CustomContext) error {
	var req defineRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}

	var table ir.Table
	if req.Table != nil {
		if errs := compiler.Validate(*req.Table); len(errs) > 0 {
			return &APIError{
				Status:  http.StatusBadRequest,
				Code:    string(engine.ErrCodeInvalidSchema),
				Message: errs[0].Error(),
				Details: errs,
			}
		}
		table = *req.Table
	} else {
		t, err := parser.ParseTable(req.Schema)
		if err != nil {
			return engineError(err)
		}
		table = t
	}

	start := time.Now()
	s.mu.Lock()
	_, err := s.engine.DefineTable(c.Request().Context(), table)
	s.mu.Unlock()
	s.observe("define", start, err)
	if err != nil {
		return engineError(err)
	}

	info, err := newTableInfo(table)
	if err != nil {
		return err
	}
	c.Log.Info("table defined", "table", table.Name, "fingerprint", info.Fingerprint)
	return c.JSON(http.StatusCreated, info)
}

func (s *HTTPServer) InsertRow(c *CustomContext) error {
	var req insertRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}

	ins := ir.Insert{Table: ir.TableName(c.Param("table")), Key: *req.Key}
	if req.Constructor != "" {
		ins.Value = ir.MultipleValue{Constructor: req.Constructor, Values: req.Values}
	} else {
		ins.Value = ir.SingleValue{Values: req.Values}
	}

	start := time.Now()
	s.mu.Lock()
	n, err := s.engine.Insert(c.Request().Context(), ins)
	s.mu.Unlock()
	s.observe("insert", start, err)
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusCreated, insertResponse{Table: ins.Table, Key: ins.Key, Inserted: n})
}

// Query runs a script. A script of selects only runs under the read lock.
// Execution stops at the first failing statement.
func (s *HTTPServer) Query(c *CustomContext) error {
	var req queryRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}

	stmts, err := parser.ParseScript(req.Statement)
	if err != nil {
		return engineError(err)
	}

	if readOnly(stmts) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	} else {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	results := make([]engine.Outcome, 0, len(stmts))
	for i, stmt := range stmts {
		start := time.Now()
		out, err := s.engine.Exec(c.Request().Context(), stmt)
		s.observe(statementKind(stmt), start, err)
		if err != nil {
			apiErr := engineError(err)
			apiErr.Message = fmt.Sprintf("statement %d: %s", i+1, apiErr.Message)
			return apiErr
		}
		results = append(results, out)
	}
	return c.JSON(http.StatusOK, queryResponse{Results: results})
}

func (s *HTTPServer) observe(kind string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = engine.CodeOf(err)
	}
	s.metrics.statements.WithLabelValues(kind, code).Inc()
	s.metrics.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func readOnly(stmts []parser.Statement) bool {
	for _, stmt := range stmts {
		if _, ok := stmt.(parser.SelectStmt); !ok {
			return false
		}
	}
	return true
}

func statementKind(stmt parser.Statement) string {
	switch stmt.(type) {
	case parser.DefineStmt:
		return "define"
	case parser.InsertStmt:
		return "insert"
	default:
		return "select"
	}
}
