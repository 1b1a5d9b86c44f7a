package translate

import (
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// rowAlias is the alias of the decomposition row set in generated subqueries.
const rowAlias = "j"

// rowProjection builds the single projection of a decomposition subquery
// from the key and value columns of the row set.
type rowProjection func(key, value *sqlexpr.Column) sqlexpr.Expr

// decompose builds a subquery over the (key, value) rows of a json or jsonb
// value:
//
//	(SELECT <project(j.key, j.value)> FROM jsonb_each_text(x) AS j)
//
// Every builder that needs to look inside an object goes through here; only
// the projection differs. The source must be json or jsonb.
func (t *Translator) decompose(source sqlexpr.Expr, project rowProjection) *sqlexpr.ScalarSubquery {
	key := &sqlexpr.Column{Table: rowAlias, Name: "key", Type: typemap.String, Mapping: t.text}
	value := &sqlexpr.Column{Table: rowAlias, Name: "value", Type: typemap.String, Mapping: t.text, Nullable: true}
	from := &sqlexpr.TableFunction{
		Alias: rowAlias,
		Name:  eachTextFunction(classify(source)),
		Args:  []sqlexpr.Expr{source},
	}
	return t.f.Subquery([]*sqlexpr.TableFunction{from}, project(key, value))
}

// aggregate collects col over the decomposition rows of source:
//
//	coalesce(array_agg(col), CASE WHEN x IS NULL THEN NULL ELSE '{}'::text[] END)
//
// array_agg over no rows is NULL. An object without members yields the
// empty array (and through hstore(keys, values) the empty hstore); a NULL
// source, which also has no rows, stays NULL.
func (t *Translator) aggregate(col *sqlexpr.Column, source sqlexpr.Expr) sqlexpr.Expr {
	agg := t.f.Function("array_agg", typemap.StringList, t.textList, col)
	empty := t.f.IfNotNull(source, t.f.Constant([]string{}, typemap.StringList, t.textList))
	return t.f.Function("coalesce", typemap.StringList, t.textList, agg, empty)
}

// objectKeys is ARRAY(SELECT jsonb_object_keys(x)).
func (t *Translator) objectKeys(source sqlexpr.Expr) sqlexpr.Expr {
	keys := t.f.Function(objectKeysFunction(classify(source)), typemap.String, t.text, source)
	return t.f.Function("array", typemap.StringList, t.textList, t.f.Subquery(nil, keys))
}

func eachTextFunction(enc typemap.Encoding) string {
	if enc == typemap.TextObject {
		return "json_each_text"
	}
	return "jsonb_each_text"
}

func objectKeysFunction(enc typemap.Encoding) string {
	if enc == typemap.TextObject {
		return "json_object_keys"
	}
	return "jsonb_object_keys"
}
