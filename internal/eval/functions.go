package eval

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/value"
)

// setReturning lists the set-returning functions; they are only valid as
// the projection of a subquery.
var setReturning = map[string]bool{
	"unnest":            true,
	"json_object_keys":  true,
	"jsonb_object_keys": true,
}

func (ev *evaluator) function(fn *sqlexpr.Function) (any, error) {
	switch {
	case fn.Name == "array":
		return ev.arrayConstructor(fn)
	case fn.Name == "array_agg":
		return nil, fmt.Errorf("aggregate array_agg outside of a subquery: %w", ErrUnsupported)
	case setReturning[fn.Name]:
		return nil, fmt.Errorf("set-returning function %s in scalar context: %w", fn.Name, ErrUnsupported)
	}
	args, err := ev.evalAll(fn.Args)
	if err != nil {
		return nil, err
	}
	return apply(fn.Name, args)
}

func (ev *evaluator) evalAll(es []sqlexpr.Expr) ([]any, error) {
	out := make([]any, len(es))
	for i, e := range es {
		v, err := ev.eval(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// arrayConstructor is ARRAY(SELECT ...): every row of the subquery becomes
// an element.
func (ev *evaluator) arrayConstructor(fn *sqlexpr.Function) (any, error) {
	if len(fn.Args) != 1 {
		return nil, fmt.Errorf("array() takes one subquery")
	}
	sq, ok := fn.Args[0].(*sqlexpr.ScalarSubquery)
	if !ok {
		return nil, fmt.Errorf("array() over %T: %w", fn.Args[0], ErrUnsupported)
	}
	rows, err := ev.selectRows(sq.Select)
	if err != nil {
		return nil, err
	}
	return append([]any{}, rows...), nil
}

// apply evaluates a scalar function over evaluated arguments.
func apply(name string, args []any) (any, error) {
	switch name {
	case "hstore":
		return hstoreConstructor(args)
	case "coalesce":
		for _, a := range args {
			if a != nil {
				return a, nil
			}
		}
		return nil, nil
	}
	for _, a := range args {
		if a == nil {
			return nil, nil
		}
	}

	switch name {
	case "akeys":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		out := []any{}
		for _, k := range d.Keys() {
			out = append(out, k)
		}
		return out, nil
	case "avals":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		out := []any{}
		for _, k := range d.Keys() {
			out = append(out, nullableText(d[k]))
		}
		return out, nil
	case "hstore_to_array":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		out := []any{}
		for _, k := range d.Keys() {
			out = append(out, k, nullableText(d[k]))
		}
		return out, nil
	case "hstore_to_json":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		text, err := value.FormatJSONText(value.DictMembers(d))
		return JSONText(text), err
	case "hstore_to_jsonb":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		return value.ObjectFromDict(d), nil
	case "hstore_to_json_loose":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		text, err := value.FormatJSONText(looseMembers(d))
		return JSONText(text), err
	case "hstore_to_jsonb_loose":
		d, err := dictArg(name, args)
		if err != nil {
			return nil, err
		}
		return value.ObjectFromMembers(looseMembers(d)), nil
	case "slice":
		if len(args) != 2 {
			return nil, fmt.Errorf("slice takes 2 arguments")
		}
		d, ok := args[0].(value.Dict)
		keys, ok2 := args[1].([]any)
		if !ok || !ok2 {
			return nil, fmt.Errorf("function slice(%s, %s) does not exist", typeName(args[0]), typeName(args[1]))
		}
		out := value.Dict{}
		for _, k := range keys {
			if ks, ok := k.(string); ok {
				if v, present := d[ks]; present {
					out[ks] = v
				}
			}
		}
		return out, nil
	case "cardinality":
		if len(args) != 1 {
			return nil, fmt.Errorf("cardinality takes 1 argument")
		}
		arr, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("function cardinality(%s) does not exist", typeName(args[0]))
		}
		return int64(len(arr)), nil
	}
	return nil, fmt.Errorf("function %s: %w", name, ErrUnsupported)
}

func dictArg(name string, args []any) (value.Dict, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes 1 argument", name)
	}
	d, ok := args[0].(value.Dict)
	if !ok {
		return nil, fmt.Errorf("function %s(%s) does not exist", name, typeName(args[0]))
	}
	return d, nil
}

func nullableText(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// hstoreConstructor is hstore(text[]) over alternating keys and values, or
// hstore(text[], text[]) over parallel arrays. A NULL value array gives
// NULL values; a NULL key array gives NULL.
func hstoreConstructor(args []any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("hstore takes 1 or 2 arguments")
	}
	if args[0] == nil {
		return nil, nil
	}
	first, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("function hstore(%s) does not exist", typeName(args[0]))
	}

	var keys, vals []any
	if len(args) == 1 {
		if len(first)%2 != 0 {
			return nil, fmt.Errorf("array must have even number of elements")
		}
		for i := 0; i < len(first); i += 2 {
			keys = append(keys, first[i])
			vals = append(vals, first[i+1])
		}
	} else {
		keys = first
		if args[1] != nil {
			v, ok := args[1].([]any)
			if !ok {
				return nil, fmt.Errorf("function hstore(text[], %s) does not exist", typeName(args[1]))
			}
			if len(v) != len(keys) {
				return nil, fmt.Errorf("arrays must have same bounds")
			}
			vals = v
		} else {
			vals = make([]any, len(keys))
		}
	}

	d := make(value.Dict, len(keys))
	for i, k := range keys {
		ks, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("null value not allowed for hstore key")
		}
		if _, dup := d[ks]; dup {
			continue
		}
		switch v := vals[i].(type) {
		case nil:
			d[ks] = nil
		case string:
			d[ks] = value.Str(v)
		default:
			d[ks] = value.Str(Format(v))
		}
	}
	return d, nil
}

// looseMembers converts hstore values for the _loose conversions: "t" and
// "f" become booleans, valid JSON numbers become numbers.
func looseMembers(d value.Dict) []value.Member {
	members := value.DictMembers(d)
	for i, m := range members {
		s, ok := m.Value.(string)
		if !ok {
			continue
		}
		switch {
		case s == "t":
			members[i].Value = true
		case s == "f":
			members[i].Value = false
		case isJSONNumber(s):
			members[i].Value = json.Number(s)
		}
	}
	return members
}

func isJSONNumber(s string) bool {
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}
