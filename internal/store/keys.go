package store

import (
	"strconv"

	"github.com/roach88/sumdb/internal/ir"
)

const (
	tablePrefix = "table_"
	dataPrefix  = "data_"
)

// TableKey is the key a table schema is stored under.
func TableKey(name ir.TableName) []byte {
	return []byte(tablePrefix + string(name))
}

// RowPrefix is the common prefix of every row key of table.
func RowPrefix(table ir.TableName) []byte {
	return []byte(dataPrefix + string(table) + "_")
}

// RowKey is the key a row is stored under.
func RowKey(table ir.TableName, key int32) []byte {
	return strconv.AppendInt(RowPrefix(table), int64(key), 10)
}

// parseRowKey returns the int32 key of a scanned row key, or false if key
// does not belong to the table whose prefix was scanned. A scan of
// data_user_ also returns rows of a table named user_x; those have a
// remainder that is not the decimal form of an int32.
func parseRowKey(prefix, key []byte) (int32, bool) {
	rest := string(key[len(prefix):])
	n, err := strconv.ParseInt(rest, 10, 32)
	if err != nil || strconv.FormatInt(n, 10) != rest {
		return 0, false
	}
	return int32(n), true
}
