package translate

import (
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// coerce returns e represented in the target encoding.
//
// An operand already in target is returned as is. Returns false when e has
// no known encoding or target is unknown.
func (t *Translator) coerce(e sqlexpr.Expr, target typemap.Encoding) (sqlexpr.Expr, bool) {
	src := classify(e)
	if !src.Known() || !target.Known() {
		return nil, false
	}
	if src == target {
		return e, true
	}

	switch target {
	case typemap.FlatStore:
		return t.toHstore(e), true
	case typemap.BinaryObject:
		if src == typemap.FlatStore {
			return t.f.Function("hstore_to_jsonb", dictShape(e.Shape()), t.jsonb, e), true
		}
		return t.retype(e, t.mappingFor(typemap.BinaryObject, e.Shape())), true
	case typemap.TextObject:
		if src == typemap.FlatStore {
			return t.f.Function("hstore_to_json", dictShape(e.Shape()), t.json, e), true
		}
		return t.retype(e, t.mappingFor(typemap.TextObject, e.Shape())), true
	}
	return nil, false
}

// retype represents e with m: a mapping swap for constants and parameters,
// a cast for everything else.
func (t *Translator) retype(e sqlexpr.Expr, m *typemap.Mapping) sqlexpr.Expr {
	return t.f.ApplyTypeMapping(e, m)
}

// toHstore rebuilds a json or jsonb value as hstore from its decomposition:
//
//	(SELECT hstore(array_agg(j.key), array_agg(j.value)) FROM jsonb_each_text(x) AS j)
//
// with each array_agg guarded by aggregate, so an empty object rebuilds as
// the empty hstore and NULL stays NULL.
func (t *Translator) toHstore(e sqlexpr.Expr) sqlexpr.Expr {
	shape := hstoreShape(e.Shape())
	m := t.mappingFor(typemap.FlatStore, shape)
	return t.decompose(e, func(key, value *sqlexpr.Column) sqlexpr.Expr {
		return t.f.Function("hstore", shape, m,
			t.aggregate(key, e),
			t.aggregate(value, e),
		)
	})
}

// hstoreOrJsonb returns e as hstore or jsonb, casting json to jsonb. These
// are the two encodings with native operators.
func (t *Translator) hstoreOrJsonb(e sqlexpr.Expr) (sqlexpr.Expr, bool) {
	switch classify(e) {
	case typemap.FlatStore, typemap.BinaryObject:
		return e, true
	case typemap.TextObject:
		return t.coerce(e, typemap.BinaryObject)
	}
	return nil, false
}

// comparableEncoding picks the common encoding of two operands: hstore when
// either side is hstore, else jsonb over json.
func comparableEncoding(l, r typemap.Encoding) typemap.Encoding {
	switch {
	case l == typemap.FlatStore || r == typemap.FlatStore:
		return typemap.FlatStore
	case l == typemap.BinaryObject || r == typemap.BinaryObject:
		return typemap.BinaryObject
	default:
		return typemap.TextObject
	}
}

// coerceToComparable brings two operands into one encoding. Both operands
// must have a known encoding. When both are json and allowTextObject is
// false, both are cast to jsonb: json has no equality of its own and two
// texts can hold the same mapping.
func (t *Translator) coerceToComparable(left, right sqlexpr.Expr, allowTextObject bool) (sqlexpr.Expr, sqlexpr.Expr, bool) {
	le, re := classify(left), classify(right)
	if !le.Known() || !re.Known() {
		return nil, nil, false
	}
	target := comparableEncoding(le, re)
	if target == typemap.TextObject && !allowTextObject {
		target = typemap.BinaryObject
	}

	l, ok := t.coerce(left, target)
	if !ok {
		return nil, nil, false
	}
	r, ok := t.coerce(right, target)
	if !ok {
		return nil, nil, false
	}
	return l, r, true
}
