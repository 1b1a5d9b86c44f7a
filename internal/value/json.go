package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Member is one key/value pair of a JSON object, in document order.
//
// Value is one of: string, json.Number, bool, nil, []any or map[string]any.
type Member struct {
	Key   string
	Value any
}

// ParseObject decomposes a JSON object into its members in document order,
// keeping duplicate keys. This is what json_each_text sees for a json value.
func ParseObject(text string) ([]Member, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("parse object: expected '{', got %v", tok)
	}

	members := []Member{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse object: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse object: expected key, got %v", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("parse object: value for %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse object: trailing data")
	}
	return members, nil
}

// Object is a jsonb object value.
type Object map[string]any

// ObjectFromMembers builds an Object; for duplicate keys the last wins.
func ObjectFromMembers(members []Member) Object {
	o := make(Object, len(members))
	for _, m := range members {
		o[m.Key] = m.Value
	}
	return o
}

// ObjectFromDict converts hstore pairs to jsonb string members; NULL values
// become JSON null.
func ObjectFromDict(d Dict) Object {
	o := make(Object, len(d))
	for k, v := range d {
		if v == nil {
			o[k] = nil
		} else {
			o[k] = *v
		}
	}
	return o
}

// ParseJSONB parses a JSON object into an Object.
func ParseJSONB(text string) (Object, error) {
	members, err := ParseObject(text)
	if err != nil {
		return nil, err
	}
	return ObjectFromMembers(members), nil
}

// Keys returns the object keys in storage order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	SortStorage(keys)
	return keys
}

// Members returns the members in storage order.
func (o Object) Members() []Member {
	keys := o.Keys()
	out := make([]Member, len(keys))
	for i, k := range keys {
		out[i] = Member{Key: k, Value: o[k]}
	}
	return out
}

// Equal compares two objects structurally. Numbers compare by their text.
func (o Object) Equal(other Object) bool {
	return reflect.DeepEqual(map[string]any(o), map[string]any(other))
}

// Contains reports whether o contains every member of sub (jsonb @> on flat
// objects).
func (o Object) Contains(sub Object) bool {
	for k, v := range sub {
		ov, ok := o[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			return false
		}
	}
	return true
}

// MemberText is the text form json_each_text gives a member value: strings
// unquoted, JSON null as SQL NULL, everything else as JSON text.
func MemberText(v any) (*string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return Str(val), nil
	case json.Number:
		return Str(val.String()), nil
	case bool:
		if val {
			return Str("true"), nil
		}
		return Str("false"), nil
	default:
		b, err := MarshalJSON(val)
		if err != nil {
			return nil, err
		}
		return Str(string(b)), nil
	}
}

// DictFromMembers converts object members to hstore pairs, first duplicate
// winning as hstore(text[], text[]) does.
func DictFromMembers(members []Member) (Dict, error) {
	d := make(Dict, len(members))
	for _, m := range members {
		if _, dup := d[m.Key]; dup {
			continue
		}
		t, err := MemberText(m.Value)
		if err != nil {
			return nil, err
		}
		d[m.Key] = t
	}
	return d, nil
}

// FormatJSONText renders members the way hstore_to_json and the json
// output of PostgreSQL do: {"a": "1", "b": null}.
func FormatJSONText(members []Member) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteString(", ")
		}
		k, err := marshalString(m.Key, false)
		if err != nil {
			return "", err
		}
		buf.Write(k)
		buf.WriteString(": ")
		v, err := MarshalJSON(m.Value)
		if err != nil {
			return "", fmt.Errorf("value for %q: %w", m.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// DictMembers returns the pairs of d in storage order as JSON members.
func DictMembers(d Dict) []Member {
	keys := d.Keys()
	out := make([]Member, len(keys))
	for i, k := range keys {
		var v any
		if p := d[k]; p != nil {
			v = *p
		}
		out[i] = Member{Key: k, Value: v}
	}
	return out
}
