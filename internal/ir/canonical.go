package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON. Stored rows go
// through it so equal content always yields equal bytes.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are not escaped)
//  3. Strings are kept byte for byte; invalid UTF-8 is an error
//  4. Floats are rejected
//
// Null is allowed: it is the stored form of an absent Optional column.
func MarshalCanonical(v any) ([]byte, error) {
	return canonicalEncoder{}.marshal(v)
}

// MarshalCanonicalNFC is MarshalCanonical with every string NFC normalized.
// Schema fingerprints use it so canonically equivalent names hash alike.
func MarshalCanonicalNFC(v any) ([]byte, error) {
	return canonicalEncoder{nfc: true}.marshal(v)
}

type canonicalEncoder struct {
	nfc bool
}

func (c canonicalEncoder) marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.value(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c canonicalEncoder) value(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil, NullValue:
		buf.WriteString("null")
	case StringValue:
		return c.quote(buf, string(val))
	case string:
		return c.quote(buf, val)
	case IntValue:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case BoolValue:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case Record:
		obj := make(map[string]any, len(val))
		for k, elem := range val {
			obj[string(k)] = elem
		}
		return c.object(buf, obj)
	case map[string]any:
		return c.object(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := c.value(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func (c canonicalEncoder) object(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.quote(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := c.value(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// quote writes s escaping only quote, backslash and control characters.
func (c canonicalEncoder) quote(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	if c.nfc {
		s = norm.NFC.String(s)
	}
	var enc bytes.Buffer
	e := json.NewEncoder(&enc)
	e.SetEscapeHTML(false)
	if err := e.Encode(s); err != nil {
		return err
	}
	out := bytes.TrimSuffix(enc.Bytes(), []byte{'\n'})

	// json.Encoder escapes U+2028 and U+2029 for JavaScript; RFC 8785 does not.
	// An escape is real only when preceded by an even number of backslashes.
	for i := 0; i < len(out); i++ {
		if out[i] == '\\' && i+5 < len(out) && out[i+1] == 'u' &&
			string(out[i+2:i+5]) == "202" && (out[i+5] == '8' || out[i+5] == '9') {
			if out[i+5] == '8' {
				buf.WriteString("\u2028")
			} else {
				buf.WriteString("\u2029")
			}
			i += 5
			continue
		}
		buf.WriteByte(out[i])
		if out[i] == '\\' && i+1 < len(out) {
			i++
			buf.WriteByte(out[i])
		}
	}
	return nil
}

// compareKeysRFC8785 orders keys by UTF-16 code units, which differs from
// Go's byte-wise string order outside the Basic Multilingual Plane.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
