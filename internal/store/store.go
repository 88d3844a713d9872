package store

import (
	"context"
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// Store maps table schemas and rows onto a Backend.
//
// Store keeps no state of its own: every lookup reads through to the
// backend, so a redefined table is visible to the next operation.
type Store struct {
	backend Backend
}

// New wraps an open backend.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Open opens a backend of the given kind at path and wraps it.
func Open(kind Kind, path string) (*Store, error) {
	b, err := OpenBackend(kind, path)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// PutTable stores t under table_<name>, replacing any earlier definition.
func (s *Store) PutTable(ctx context.Context, t ir.Table) error {
	data, err := marshalTable(t)
	if err != nil {
		return storageErr("put table", TableKey(t.Name), err)
	}
	return s.backend.Put(ctx, TableKey(t.Name), data)
}

// LookupTable reads the schema of name. ok is false if it was never defined.
func (s *Store) LookupTable(ctx context.Context, name ir.TableName) (ir.Table, bool, error) {
	key := TableKey(name)
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return ir.Table{}, false, err
	}
	t, err := unmarshalTable(data)
	if err != nil {
		return ir.Table{}, false, storageErr("decode table", key, err)
	}
	if t.Name != name {
		return ir.Table{}, false, storageErr("decode table", key,
			fmt.Errorf("stored schema is for table %q", t.Name))
	}
	return t, true, nil
}

// ListTables returns every defined table, ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]ir.Table, error) {
	tables := []ir.Table{}
	err := s.backend.Scan(ctx, []byte(tablePrefix), func(key, value []byte) error {
		t, err := unmarshalTable(value)
		if err != nil {
			return storageErr("decode table", key, err)
		}
		tables = append(tables, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// PutRow stores the values of ins under data_<table>_<key>, replacing any
// row already stored under that key. Values are stored as given; callers
// type-check and trim them first.
func (s *Store) PutRow(ctx context.Context, ins ir.Insert) error {
	key := RowKey(ins.Table, ins.Key)
	data, err := marshalRow(ins.Value)
	if err != nil {
		return storageErr("encode row", key, err)
	}
	return s.backend.Put(ctx, key, data)
}

// ScanRows calls fn for each row of table in key order. Keys that share
// the table's prefix but belong to another table are skipped. A row that
// cannot be decoded stops the scan with a *StorageError.
func (s *Store) ScanRows(ctx context.Context, table ir.TableName, fn func(key int32, row ir.Record) error) error {
	prefix := RowPrefix(table)
	return s.backend.Scan(ctx, prefix, func(k, v []byte) error {
		key, ok := parseRowKey(prefix, k)
		if !ok {
			return nil
		}
		row, err := unmarshalRow(v)
		if err != nil {
			return storageErr("decode row", k, err)
		}
		return fn(key, row)
	})
}

// CheckReport counts what Check read.
type CheckReport struct {
	Tables int `json:"tables"`
	Rows   int `json:"rows"`
}

// Check verifies the backend file when the backend is a Checker, then
// decodes every stored schema and row. The first problem is returned as a
// *StorageError.
func (s *Store) Check(ctx context.Context) (CheckReport, error) {
	var report CheckReport
	if c, ok := s.backend.(Checker); ok {
		if err := c.Check(ctx); err != nil {
			return report, storageErr("check", nil, err)
		}
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return report, err
	}
	report.Tables = len(tables)
	for _, t := range tables {
		err := s.ScanRows(ctx, t.Name, func(int32, ir.Record) error {
			report.Rows++
			return nil
		})
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
