package eval

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pgdict/internal/typemap"
	"github.com/roach88/pgdict/internal/value"
)

// FromGo converts a Go value bound to a column, constant or parameter into
// the runtime value of mapping m.
//
// hstore accepts value.Dict, map[string]string, map[string]any and hstore
// text. json accepts JSONText, JSON text and anything MarshalJSON accepts.
// jsonb accepts value.Object, JSON text and anything MarshalJSON accepts.
// Other mappings accept scalars and []string / []any.
func FromGo(v any, m *typemap.Mapping) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch m.Encoding() {
	case typemap.FlatStore:
		return toDict(v)
	case typemap.TextObject:
		switch val := v.(type) {
		case JSONText:
			return val, nil
		case string:
			if _, err := value.ParseObject(val); err != nil {
				return nil, err
			}
			return JSONText(val), nil
		}
		b, err := value.MarshalJSON(normalizeGo(v))
		if err != nil {
			return nil, err
		}
		return JSONText(b), nil
	case typemap.BinaryObject:
		switch val := v.(type) {
		case value.Object:
			return val, nil
		case string:
			return value.ParseJSONB(val)
		case JSONText:
			return value.ParseJSONB(string(val))
		}
		b, err := value.MarshalJSON(normalizeGo(v))
		if err != nil {
			return nil, err
		}
		return value.ParseJSONB(string(b))
	}
	return scalar(v)
}

func toDict(v any) (value.Dict, error) {
	switch val := v.(type) {
	case value.Dict:
		return val, nil
	case string:
		return value.ParseHstore(val)
	case map[string]string:
		d := make(value.Dict, len(val))
		for k, s := range val {
			d[k] = value.Str(s)
		}
		return d, nil
	case map[string]any:
		d := make(value.Dict, len(val))
		for k, e := range val {
			switch s := e.(type) {
			case nil:
				d[k] = nil
			case string:
				d[k] = value.Str(s)
			default:
				d[k] = value.Str(fmt.Sprint(s))
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("cannot use %T as hstore", v)
	}
}

func scalar(v any) (any, error) {
	switch val := v.(type) {
	case string, int64, bool:
		return val, nil
	case int:
		return int64(val), nil
	case *string:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, el := range val {
			s, err := scalar(el)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot use %T as a scalar", v)
	}
}

// normalizeGo turns the map[string]string YAML and tests produce into a
// form MarshalJSON accepts.
func normalizeGo(v any) any {
	if m, ok := v.(map[string]string); ok {
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	}
	return v
}

// Cast converts a runtime value to the store type of m, as x::type does.
func Cast(v any, m *typemap.Mapping) (any, error) {
	if v == nil {
		return nil, nil
	}
	if m == nil {
		return nil, fmt.Errorf("cast without target type")
	}
	switch m.StoreType() {
	case "text":
		return Format(v), nil
	case typemap.StoreJSON:
		switch val := v.(type) {
		case JSONText:
			return val, nil
		case value.Object:
			text, err := value.FormatJSONText(val.Members())
			return JSONText(text), err
		case string:
			return FromGo(val, m)
		}
	case typemap.StoreJSONB:
		switch val := v.(type) {
		case value.Object:
			return val, nil
		case JSONText:
			return value.ParseJSONB(string(val))
		case string:
			return value.ParseJSONB(val)
		}
	case typemap.StoreHstore:
		switch val := v.(type) {
		case value.Dict:
			return val, nil
		case string:
			return value.ParseHstore(val)
		}
	case "text[]":
		if arr, ok := v.([]any); ok {
			return arr, nil
		}
	}
	return nil, fmt.Errorf("cannot cast %s to %s", typeName(v), m.StoreType())
}

// Format renders a runtime value as PostgreSQL text output, with NULL for
// SQL NULL and true/false for booleans.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, len(val))
		for i, el := range val {
			if el == nil {
				parts[i] = "NULL"
			} else {
				parts[i] = strconv.Quote(Format(el))
			}
		}
		return "{" + strings.Join(parts, ",") + "}"
	case value.Dict:
		return value.FormatHstore(val)
	case JSONText:
		return string(val)
	case value.Object:
		text, err := value.FormatJSONText(val.Members())
		if err != nil {
			return fmt.Sprintf("<invalid jsonb: %v>", err)
		}
		return text
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "text"
	case int64:
		return "integer"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case value.Dict:
		return "hstore"
	case JSONText:
		return "json"
	case value.Object:
		return "jsonb"
	default:
		return fmt.Sprintf("%T", v)
	}
}
