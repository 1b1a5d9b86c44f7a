package translate

import (
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
	"github.com/roach88/pgdict/internal/value"
)

// valueForKey: x -> k for hstore, x ->> k for json and jsonb.
func (t *Translator) valueForKey(x, key sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(x) {
	case typemap.FlatStore:
		return t.f.Binary(sqlexpr.OpValueForKey, x, key, typemap.String, t.text), true
	case typemap.TextObject, typemap.BinaryObject:
		return t.f.Binary(sqlexpr.OpValueForKeyAsText, x, key, typemap.String, t.text), true
	}
	return nil, false
}

// valuesForKeys: hstore(x) -> keys.
func (t *Translator) valuesForKeys(x, keys sqlexpr.Expr) (sqlexpr.Expr, bool) {
	if !isStringList(keys) {
		return nil, false
	}
	h, ok := t.coerce(x, typemap.FlatStore)
	if !ok {
		return nil, false
	}
	return t.f.Binary(sqlexpr.OpValueForKey, h, keys, typemap.StringList, t.textList), true
}

// slice: slice(hstore(x), keys). The result is always hstore.
func (t *Translator) slice(x, keys sqlexpr.Expr) (sqlexpr.Expr, bool) {
	if !isStringList(keys) {
		return nil, false
	}
	h, ok := t.coerce(x, typemap.FlatStore)
	if !ok {
		return nil, false
	}
	shape := hstoreShape(x.Shape())
	return t.f.Function("slice", shape, t.mappingFor(typemap.FlatStore, shape), h, keys), true
}

// containment: left @> right or left <@ right in a common encoding.
func (t *Translator) containment(op sqlexpr.Operator, left, right sqlexpr.Expr) (sqlexpr.Expr, bool) {
	l, r, ok := t.coerceToComparable(left, right, false)
	if !ok {
		return nil, false
	}
	return t.f.Compare(op, l, r), true
}

// containsKey: x ? k, with json cast to jsonb.
func (t *Translator) containsKey(x, key sqlexpr.Expr) (sqlexpr.Expr, bool) {
	h, ok := t.hstoreOrJsonb(x)
	if !ok {
		return nil, false
	}
	return t.f.Compare(sqlexpr.OpContainsKey, h, key), true
}

// containsValue: v = ANY(values(x)).
func (t *Translator) containsValue(x, v sqlexpr.Expr) (sqlexpr.Expr, bool) {
	vals, ok := t.values(x)
	if !ok {
		return nil, false
	}
	return t.f.Any(v, vals), true
}

// removeKeys: x - k where k is a key or a key array. json is cast to jsonb
// first, so the result of removing from json is jsonb.
func (t *Translator) removeKeys(x, keys sqlexpr.Expr) (sqlexpr.Expr, bool) {
	if !isKeyOperand(keys) {
		return nil, false
	}
	h, ok := t.hstoreOrJsonb(x)
	if !ok {
		return nil, false
	}
	return t.f.Binary(sqlexpr.OpSubtract, h, keys, h.Shape(), h.TypeMapping()), true
}

// except removes the pairs of right from left. The difference is taken in
// hstore, where x - y drops pairs matching in both key and value; json and
// jsonb results are converted back to the encoding of left.
func (t *Translator) except(left, right sqlexpr.Expr) (sqlexpr.Expr, bool) {
	enc := classify(left)
	l, ok := t.coerce(left, typemap.FlatStore)
	if !ok {
		return nil, false
	}
	r, ok := t.coerce(right, typemap.FlatStore)
	if !ok {
		return nil, false
	}
	diff := t.f.Binary(sqlexpr.OpSubtract, l, r, l.Shape(), l.TypeMapping())
	if enc == typemap.FlatStore {
		return diff, true
	}
	return t.coerce(diff, enc)
}

// concat: left || right in a common encoding; right wins on key conflicts.
func (t *Translator) concat(left, right sqlexpr.Expr) (sqlexpr.Expr, bool) {
	l, r, ok := t.coerceToComparable(left, right, false)
	if !ok {
		return nil, false
	}
	return t.f.Binary(sqlexpr.OpConcat, l, r, r.Shape(), r.TypeMapping()), true
}

// equal compares two dictionaries. Two json operands stay json only under
// RawTextEquality, and are then compared as text since json has no
// equality operator.
func (t *Translator) equal(left, right sqlexpr.Expr) (sqlexpr.Expr, bool) {
	l, r, ok := t.coerceToComparable(left, right, t.opts.RawTextEquality)
	if !ok {
		return nil, false
	}
	if classify(l) == typemap.TextObject {
		l = t.f.Convert(l, typemap.String, t.text)
		r = t.f.Convert(r, typemap.String, t.text)
	}
	return t.f.Equal(l, r), true
}

// keys: akeys(x) for hstore, ARRAY(SELECT json(b)_object_keys(x)) otherwise.
func (t *Translator) keys(x sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(x) {
	case typemap.FlatStore:
		return t.f.Function("akeys", typemap.StringList, t.textList, x), true
	case typemap.TextObject, typemap.BinaryObject:
		return t.objectKeys(x), true
	}
	return nil, false
}

// values: avals(x) for hstore, an aggregate over the decomposition otherwise.
func (t *Translator) values(x sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(x) {
	case typemap.FlatStore:
		return t.f.Function("avals", typemap.StringList, t.textList, x), true
	case typemap.TextObject, typemap.BinaryObject:
		return t.decompose(x, func(_, val *sqlexpr.Column) sqlexpr.Expr {
			return t.aggregate(val, x)
		}), true
	}
	return nil, false
}

// count: cardinality(keys(x)).
func (t *Translator) count(x sqlexpr.Expr) (sqlexpr.Expr, bool) {
	k, ok := t.keys(x)
	if !ok {
		return nil, false
	}
	return t.f.Function("cardinality", typemap.Int, t.integer, k), true
}

// emptiness tests x for (op = OpEqual) or against (OpNotEqual) having no
// pairs: a count comparison for hstore, a comparison with '{}' for json
// and jsonb.
func (t *Translator) emptiness(op sqlexpr.Operator, x sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(x) {
	case typemap.FlatStore:
		c, _ := t.count(x)
		return t.f.Compare(op, c, t.f.Int(0)), true
	case typemap.TextObject, typemap.BinaryObject:
		b, _ := t.coerce(x, typemap.BinaryObject)
		empty := t.f.Constant(value.Dict{}, typemap.StringDict, t.jsonb)
		return t.f.Compare(op, b, empty), true
	}
	return nil, false
}

// keyValueList flattens x into [k1, v1, k2, v2, ...]: hstore_to_array for
// hstore, unnest(ARRAY[j.key, j.value]) over the decomposition otherwise.
func (t *Translator) keyValueList(x sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(x) {
	case typemap.FlatStore:
		return t.f.Function("hstore_to_array", typemap.StringList, t.textList, x), true
	case typemap.TextObject, typemap.BinaryObject:
		rows := t.decompose(x, func(key, val *sqlexpr.Column) sqlexpr.Expr {
			pair := t.f.NewArray(typemap.StringList, t.textList, key, val)
			return t.f.Function("unnest", typemap.String, t.text, pair)
		})
		return t.f.Function("array", typemap.StringList, t.textList, rows), true
	}
	return nil, false
}

// fromArrays: hstore(list) or hstore(keys, values).
func (t *Translator) fromArrays(arrays ...sqlexpr.Expr) (sqlexpr.Expr, bool) {
	for _, a := range arrays {
		if !isStringList(a) {
			return nil, false
		}
	}
	return t.f.Function("hstore", typemap.StringDict, t.hstore, arrays...), true
}

// looseJSON converts hstore to json or jsonb keeping numbers and booleans
// unquoted. Only hstore has the loose conversion functions.
func (t *Translator) looseJSON(x sqlexpr.Expr, target typemap.Encoding) (sqlexpr.Expr, bool) {
	if classify(x) != typemap.FlatStore {
		return nil, false
	}
	if target == typemap.TextObject {
		return t.f.Function("hstore_to_json_loose", typemap.LooseDict, t.jsonLoose, x), true
	}
	return t.f.Function("hstore_to_jsonb_loose", typemap.LooseDict, t.jsonbLoose, x), true
}

// toDictionary retypes x as target. A value already of the target shape is
// returned unchanged; an hstore value is recast (or its mapping swapped);
// json and jsonb are not applicable.
func (t *Translator) toDictionary(x sqlexpr.Expr, target typemap.Shape) (sqlexpr.Expr, bool) {
	if x.Shape() == target {
		return x, true
	}
	if classify(x) != typemap.FlatStore {
		return nil, false
	}
	m := t.mappingFor(typemap.FlatStore, target)
	if sqlexpr.IsLiteral(x) {
		return t.retype(x, m), true
	}
	return t.f.Convert(x, target, m), true
}

// isTranslatedArray recognizes the key and value arrays this package
// produces, so that a ToList over them is a no-op:
//
//	akeys(h), avals(h)
//	ARRAY(SELECT json(b)_object_keys(x))
//	(SELECT ... FROM json(b)_each_text(x) AS j)
func isTranslatedArray(e sqlexpr.Expr) bool {
	switch n := e.(type) {
	case *sqlexpr.Function:
		if (n.Name == "akeys" || n.Name == "avals") && len(n.Args) == 1 {
			return classify(n.Args[0]) == typemap.FlatStore
		}
		if n.Name == "array" && len(n.Args) == 1 {
			sq, ok := n.Args[0].(*sqlexpr.ScalarSubquery)
			if !ok || sq.Select == nil || len(sq.Select.Projection) != 1 {
				return false
			}
			fn, ok := sq.Select.Projection[0].(*sqlexpr.Function)
			if !ok || len(fn.Args) != 1 {
				return false
			}
			return (fn.Name == "json_object_keys" || fn.Name == "jsonb_object_keys") &&
				(classify(fn.Args[0]) == typemap.TextObject || classify(fn.Args[0]) == typemap.BinaryObject)
		}
	case *sqlexpr.ScalarSubquery:
		if n.Select == nil || len(n.Select.Tables) != 1 {
			return false
		}
		tf := n.Select.Tables[0]
		if tf == nil || len(tf.Args) != 1 {
			return false
		}
		return (tf.Name == "json_each_text" || tf.Name == "jsonb_each_text") &&
			(classify(tf.Args[0]) == typemap.TextObject || classify(tf.Args[0]) == typemap.BinaryObject)
	}
	return false
}
