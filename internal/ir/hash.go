package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTable separates table fingerprints from any other hash of the same
// bytes. The version suffix allows the encoding to change later.
const DomainTable = "sumdb/table/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TableFingerprint identifies a schema by content. Two definitions of the
// same table with the same columns have the same fingerprint regardless of
// the order columns or constructors were declared in.
func TableFingerprint(t Table) (string, error) {
	obj := map[string]any{"name": string(t.Name)}
	switch cols := t.Columns.(type) {
	case SingleConstructor:
		obj["single_constructor"] = columnSetObject(cols.Columns)
	case MultipleConstructors:
		variants := make(map[string]any, len(cols.Variants))
		for c, set := range cols.Variants {
			variants[string(c)] = columnSetObject(set)
		}
		obj["multiple_constructors"] = variants
	default:
		return "", fmt.Errorf("TableFingerprint: unknown columns type %T", t.Columns)
	}

	canonical, err := MarshalCanonicalNFC(obj)
	if err != nil {
		return "", fmt.Errorf("TableFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

func columnSetObject(cs ColumnSet) map[string]any {
	out := make(map[string]any, len(cs))
	for name, typ := range cs {
		out[string(name)] = typ.String()
	}
	return out
}

// MustTableFingerprint is like TableFingerprint but panics on error.
// Use only in tests or when the table is known to be valid.
func MustTableFingerprint(t Table) string {
	fp, err := TableFingerprint(t)
	if err != nil {
		panic(err)
	}
	return fp
}
