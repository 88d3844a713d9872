package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sumdb/internal/ir"
)

// marshalTable converts a Table to its stored JSON form.
func marshalTable(t ir.Table) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	return data, nil
}

// unmarshalTable parses a stored table schema.
func unmarshalTable(data []byte) (ir.Table, error) {
	var t ir.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return ir.Table{}, fmt.Errorf("unmarshal table: %w", err)
	}
	return t, nil
}

// marshalRow converts an insert's values to canonical JSON. Rows of a
// tagged-union table carry their constructor in the _type field.
func marshalRow(value ir.InsertValue) ([]byte, error) {
	values := value.Columns()
	row := make(ir.Record, len(values)+1)
	for name, v := range values {
		row[name] = v
	}
	if mv, ok := value.(ir.MultipleValue); ok {
		row[ir.TypeColumn] = ir.StringValue(mv.Constructor)
	}

	data, err := ir.MarshalCanonical(row)
	if err != nil {
		return nil, fmt.Errorf("marshal row: %w", err)
	}
	return data, nil
}

// unmarshalRow parses a stored row. Values keep their scalar kinds; _type,
// if present, is a StringValue.
func unmarshalRow(data []byte) (ir.Record, error) {
	var row ir.Record
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("unmarshal row: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("unmarshal row: not an object")
	}
	return row, nil
}
