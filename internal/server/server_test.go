package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/store"
	"github.com/roach88/sumdb/internal/testutil"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	st, err := store.Open(store.KindSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(st, engine.WithLogger(logger))
	return New(eng, WithLogger(logger), WithIDGenerator(testutil.NewSequentialIDs("")))
}

func do(t *testing.T, s *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedPets defines the pet table and inserts its fixture rows over HTTP.
func seedPets(t *testing.T, s *HTTPServer) {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/tables", `{"schema": "`+testutil.PetSchema+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/tables/pet/rows",
		`{"key": 1, "constructor": "Cat", "values": {"age": 27, "name": "Mr Cat"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPost, "/tables/pet/rows",
		`{"key": 2, "constructor": "Dog", "values": {"age": 21, "name": "Mr Dog", "likes_stick": true}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/hc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
}

func TestDefineAndDescribe(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/tables", `{"schema": "`+testutil.UserSchema+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[tableInfo](t, rec)
	assert.Equal(t, ir.TableName("user"), created.Name)
	assert.Equal(t, ir.MustTableFingerprint(testutil.UserTable()), created.Fingerprint)
	assert.Equal(t, testutil.UserTable(), created.Table)

	rec = do(t, s, http.MethodGet, "/tables/user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	described := decode[tableInfo](t, rec)
	assert.Equal(t, created, described)
	assert.Equal(t, "type user { age: Int, name: String, nice: Bool }", described.Schema)
}

func TestDefineTableFromJSON(t *testing.T) {
	s := newTestServer(t)

	body := `{"table": {"name": "pet", "multiple_constructors": {
		"Cat": {"age": "Int", "name": "String"},
		"Dog": {"age": "Int", "name": "String", "likes_stick": "Bool"}}}}`
	rec := do(t, s, http.MethodPost, "/tables", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, testutil.PetTable(), decode[tableInfo](t, rec).Table)
}

func TestDefineTableRejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", `{}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad schema text", `{"schema": "type user {"}`, http.StatusBadRequest, "PARSE_ERROR"},
		{"bad identifier", `{"table": {"name": "User", "single_constructor": {"a": "Int"}}}`, http.StatusBadRequest, "INVALID_SCHEMA"},
		{"reserved column", `{"table": {"name": "t", "single_constructor": {"_type": "Int"}}}`, http.StatusBadRequest, "INVALID_SCHEMA"},
		{"unknown type", `{"table": {"name": "t", "single_constructor": {"a": "Float"}}}`, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/tables", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			apiErr := decode[APIError](t, rec)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, "req-1", apiErr.RequestID)
		})
	}
}

func TestListTables(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	seedPets(t, s)
	rec = do(t, s, http.MethodPost, "/tables", `{"schema": "`+testutil.UserSchema+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	infos := decode[[]tableInfo](t, rec)
	require.Len(t, infos, 2)
	assert.Equal(t, ir.TableName("pet"), infos[0].Name)
	assert.Equal(t, ir.TableName("user"), infos[1].Name)
}

func TestDescribeUnknownTable(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/tables/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TABLE_NOT_FOUND", decode[APIError](t, rec).Code)
}

func TestInsertRowRejects(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing key", "/tables/pet/rows", `{"constructor": "Cat", "values": {}}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"key out of range", "/tables/pet/rows", `{"key": 4294967296, "values": {}}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"float value", "/tables/pet/rows", `{"key": 3, "constructor": "Cat", "values": {"age": 1.5, "name": "x"}}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"no constructor", "/tables/pet/rows", `{"key": 3, "values": {"age": 1, "name": "x"}}`, http.StatusUnprocessableEntity, "CONSTRUCTOR_NOT_SPECIFIED"},
		{"unknown constructor", "/tables/pet/rows", `{"key": 3, "constructor": "Bird", "values": {}}`, http.StatusUnprocessableEntity, "CONSTRUCTOR_NOT_FOUND"},
		{"wrong type", "/tables/pet/rows", `{"key": 3, "constructor": "Cat", "values": {"age": "old", "name": "x"}}`, http.StatusUnprocessableEntity, "TYPE_MISMATCH_IN_INPUT"},
		{"unknown table", "/tables/ghost/rows", `{"key": 3, "values": {}}`, http.StatusNotFound, "TABLE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			seedPets(t, s)
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[APIError](t, rec).Code)
		})
	}
}

func TestQuery(t *testing.T) {
	s := newTestServer(t)
	seedPets(t, s)

	rec := do(t, s, http.MethodPost, "/query", `{"statement": "select name, likes_stick from pet"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"results": [{
		"kind": "select",
		"table": "pet",
		"columns": ["name", "likes_stick"],
		"rows": [
			{"ordinal": 1, "row": {"name": "Mr Cat", "likes_stick": null}},
			{"ordinal": 2, "row": {"name": "Mr Dog", "likes_stick": true}}
		]
	}]}`, rec.Body.String())
}

func TestQueryScript(t *testing.T) {
	s := newTestServer(t)

	body := `{"statement": "type t { a: Int }; insert into t 1 { a: 5 }; select a from t where a = 5"}`
	rec := do(t, s, http.MethodPost, "/query", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[queryResponse](t, rec)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "define", resp.Results[0].Kind)
	assert.Equal(t, "insert", resp.Results[1].Kind)
	assert.Equal(t, 1, resp.Results[1].Inserted)
	require.Len(t, resp.Results[2].Rows, 1)
	assert.Equal(t, ir.IntValue(5), resp.Results[2].Rows[0].Row["a"])
}

func TestQueryErrors(t *testing.T) {
	s := newTestServer(t)
	seedPets(t, s)

	rec := do(t, s, http.MethodPost, "/query", `{"statement": "select wings from pet"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	apiErr := decode[APIError](t, rec)
	assert.Equal(t, "COLUMN_NOT_FOUND", apiErr.Code)
	assert.Contains(t, apiErr.Message, "statement 1:")

	rec = do(t, s, http.MethodPost, "/query", `{"statement": "select from pet"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARSE_ERROR", decode[APIError](t, rec).Code)

	rec = do(t, s, http.MethodPost, "/query", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/query", `{"statement": "select name from ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, rec).Code)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	seedPets(t, s)
	do(t, s, http.MethodPost, "/query", `{"statement": "select wings from pet"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sumdb_statements_total{code="ok",kind="define"} 1`)
	assert.Contains(t, body, `sumdb_statements_total{code="ok",kind="insert"} 2`)
	assert.Contains(t, body, `sumdb_statements_total{code="COLUMN_NOT_FOUND",kind="select"} 1`)
	assert.Contains(t, body, `sumdb_statement_duration_seconds_count{kind="insert"} 2`)
	assert.Contains(t, body, `sumdb_http_requests_total{method="POST",route="/tables/:table/rows",status="201"} 2`)
}

func TestRequestIDsAreSequential(t *testing.T) {
	s := newTestServer(t)
	for _, want := range []string{"req-1", "req-2", "req-3"} {
		rec := do(t, s, http.MethodGet, "/hc", "")
		assert.Equal(t, want, rec.Header().Get("X-Request-Id"))
	}
}

func TestUUIDv7Generator(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14])
}
