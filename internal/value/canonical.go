package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalJSON renders v as compact JSON with object keys in RFC 8785 order
// and no HTML escaping. Used for inline json/jsonb literals.
//
// Supported: nil, string, bool, int, int64, json.Number, []any, []string,
// map[string]any, Dict, Object.
func MarshalJSON(v any) ([]byte, error) {
	return marshal(v, false)
}

// MarshalCanonical is MarshalJSON with NFC-normalized strings. Two values
// that differ only in Unicode normalization render identically, which makes
// the output suitable for fingerprints.
func MarshalCanonical(v any) ([]byte, error) {
	return marshal(v, true)
}

func marshal(v any, nfc bool) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return marshalString(val, nfc)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case json.Number:
		return []byte(val.String()), nil
	case *string:
		if val == nil {
			return []byte("null"), nil
		}
		return marshalString(*val, nfc)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(arr, nfc)
	case []any:
		return marshalArray(val, nfc)
	case Dict:
		obj := make(map[string]any, len(val))
		for k, p := range val {
			if p == nil {
				obj[k] = nil
			} else {
				obj[k] = *p
			}
		}
		return marshalObject(obj, nfc)
	case Object:
		return marshalObject(val, nfc)
	case map[string]any:
		return marshalObject(val, nfc)
	default:
		return nil, fmt.Errorf("unsupported type for JSON: %T", v)
	}
}

func marshalString(s string, nfc bool) ([]byte, error) {
	if nfc {
		s = norm.NFC.String(s)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators undoes the \u2028 and \u2029 escapes encoding/json
// adds, leaving escaped backslashes followed by "u2028" alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Any other escape is copied whole so its second byte is never
		// mistaken for the start of an escape.
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

func marshalArray(arr []any, nfc bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshal(elem, nfc)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any, nfc bool) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k, nfc)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshal(obj[k], nfc)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// compareUTF16 orders strings by UTF-16 code units (RFC 8785 §3.2.3).
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
