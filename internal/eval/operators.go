package eval

import (
	"fmt"
	"reflect"

	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/value"
)

func binary(op sqlexpr.Operator, l, r any) (any, error) {
	if l == nil || r == nil {
		return nil, nil
	}
	switch op {
	case sqlexpr.OpEqual:
		return equal(l, r)
	case sqlexpr.OpNotEqual:
		eq, err := equal(l, r)
		return !eq, err
	case sqlexpr.OpContains:
		return contains(l, r)
	case sqlexpr.OpContainedBy:
		return contains(r, l)
	case sqlexpr.OpValueForKey:
		return valueForKey(l, r)
	case sqlexpr.OpValueForKeyAsText:
		return valueForKeyAsText(l, r)
	case sqlexpr.OpContainsKey:
		return containsKey(l, r)
	case sqlexpr.OpSubtract:
		return subtract(l, r)
	case sqlexpr.OpConcat:
		return concat(l, r)
	}
	return nil, fmt.Errorf("operator %s: %w", op, ErrUnsupported)
}

func mismatch(op string, l, r any) error {
	return fmt.Errorf("operator does not exist: %s %s %s", typeName(l), op, typeName(r))
}

func equal(l, r any) (bool, error) {
	switch lv := l.(type) {
	case string, int64, bool:
		if reflect.TypeOf(l) != reflect.TypeOf(r) {
			return false, mismatch("=", l, r)
		}
		return l == r, nil
	case value.Dict:
		rv, ok := r.(value.Dict)
		if !ok {
			return false, mismatch("=", l, r)
		}
		return lv.Equal(rv), nil
	case value.Object:
		rv, ok := r.(value.Object)
		if !ok {
			return false, mismatch("=", l, r)
		}
		return lv.Equal(rv), nil
	case []any:
		rv, ok := r.([]any)
		if !ok {
			return false, mismatch("=", l, r)
		}
		return reflect.DeepEqual(lv, rv), nil
	}
	// json has no equality operator.
	return false, mismatch("=", l, r)
}

func contains(l, r any) (any, error) {
	switch lv := l.(type) {
	case value.Dict:
		if rv, ok := r.(value.Dict); ok {
			return lv.Contains(rv), nil
		}
	case value.Object:
		if rv, ok := r.(value.Object); ok {
			return lv.Contains(rv), nil
		}
	}
	return nil, mismatch("@>", l, r)
}

// valueForKey is hstore -> text and hstore -> text[].
func valueForKey(l, r any) (any, error) {
	d, ok := l.(value.Dict)
	if !ok {
		return nil, fmt.Errorf("-> on %s: %w", typeName(l), ErrUnsupported)
	}
	switch key := r.(type) {
	case string:
		if v := d[key]; v != nil {
			return *v, nil
		}
		return nil, nil
	case []any:
		out := make([]any, len(key))
		for i, k := range key {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			if v := d[ks]; v != nil {
				out[i] = *v
			}
		}
		return out, nil
	}
	return nil, mismatch("->", l, r)
}

// valueForKeyAsText is json ->> text and jsonb ->> text. For json the last
// duplicate of a key is the operative one.
func valueForKeyAsText(l, r any) (any, error) {
	key, ok := r.(string)
	if !ok {
		return nil, mismatch("->>", l, r)
	}
	var obj value.Object
	switch lv := l.(type) {
	case value.Object:
		obj = lv
	case JSONText:
		members, err := value.ParseObject(string(lv))
		if err != nil {
			return nil, err
		}
		obj = value.ObjectFromMembers(members)
	default:
		return nil, mismatch("->>", l, r)
	}
	v, present := obj[key]
	if !present {
		return nil, nil
	}
	text, err := value.MemberText(v)
	if err != nil || text == nil {
		return nil, err
	}
	return *text, nil
}

func containsKey(l, r any) (any, error) {
	key, ok := r.(string)
	if !ok {
		return nil, mismatch("?", l, r)
	}
	switch lv := l.(type) {
	case value.Dict:
		_, present := lv[key]
		return present, nil
	case value.Object:
		_, present := lv[key]
		return present, nil
	}
	return nil, mismatch("?", l, r)
}

// subtract covers hstore - text, hstore - text[], hstore - hstore (pairs
// matching in key and value), jsonb - text and jsonb - text[].
func subtract(l, r any) (any, error) {
	switch lv := l.(type) {
	case value.Dict:
		out := lv.Clone()
		switch rv := r.(type) {
		case string:
			delete(out, rv)
		case []any:
			for _, k := range rv {
				if ks, ok := k.(string); ok {
					delete(out, ks)
				}
			}
		case value.Dict:
			for k, v := range rv {
				if cur, ok := out[k]; ok && sameText(cur, v) {
					delete(out, k)
				}
			}
		default:
			return nil, mismatch("-", l, r)
		}
		return out, nil
	case value.Object:
		out := make(value.Object, len(lv))
		for k, v := range lv {
			out[k] = v
		}
		switch rv := r.(type) {
		case string:
			delete(out, rv)
		case []any:
			for _, k := range rv {
				if ks, ok := k.(string); ok {
					delete(out, ks)
				}
			}
		default:
			return nil, mismatch("-", l, r)
		}
		return out, nil
	}
	return nil, mismatch("-", l, r)
}

// concat merges dictionaries with the right side winning, or appends
// arrays.
func concat(l, r any) (any, error) {
	switch lv := l.(type) {
	case value.Dict:
		rv, ok := r.(value.Dict)
		if !ok {
			return nil, mismatch("||", l, r)
		}
		out := lv.Clone()
		for k, v := range rv {
			out[k] = v
		}
		return out, nil
	case value.Object:
		rv, ok := r.(value.Object)
		if !ok {
			return nil, mismatch("||", l, r)
		}
		out := make(value.Object, len(lv)+len(rv))
		for k, v := range lv {
			out[k] = v
		}
		for k, v := range rv {
			out[k] = v
		}
		return out, nil
	case []any:
		rv, ok := r.([]any)
		if !ok {
			return nil, mismatch("||", l, r)
		}
		return append(append([]any{}, lv...), rv...), nil
	}
	return nil, mismatch("||", l, r)
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
