// Package sqlgen renders translated expression trees as PostgreSQL text.
//
// Parameters are never interpolated: each distinct parameter name becomes
// one $n placeholder, numbered in order of first appearance, and its value
// is appended to the returned argument list. Constants the translator
// itself introduces (key arrays, the empty object, counts) are rendered
// inline with an explicit cast.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pgdict/internal/eval"
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// Generator renders expression trees to SQL.
type Generator struct {
	// Params holds the values of parameters, keyed by parameter name.
	// Dictionary values are sent as their hstore or JSON text.
	Params map[string]any
}

// NewGenerator creates a Generator with an empty parameter set.
func NewGenerator() *Generator {
	return &Generator{Params: make(map[string]any)}
}

// Generate renders e. Returns (sql, args, error); args[i] is the value of
// placeholder $i+1.
func (g *Generator) Generate(e sqlexpr.Expr) (string, []any, error) {
	if e == nil {
		return "", nil, fmt.Errorf("cannot generate nil expression")
	}
	if res := sqlexpr.Validate(e); !res.Valid {
		return "", nil, fmt.Errorf("invalid expression: %s", strings.Join(res.Problems, "; "))
	}

	r := &renderer{params: g.Params, index: make(map[string]int)}
	if err := r.expr(e); err != nil {
		return "", nil, err
	}
	return r.b.String(), r.args, nil
}

type renderer struct {
	b      strings.Builder
	params map[string]any
	index  map[string]int
	args   []any
}

func (r *renderer) expr(e sqlexpr.Expr) error {
	switch n := e.(type) {
	case *sqlexpr.Column:
		if n.Table != "" {
			r.b.WriteString(QuoteIdent(n.Table))
			r.b.WriteByte('.')
		}
		r.b.WriteString(QuoteIdent(n.Name))
	case *sqlexpr.Constant:
		return r.constant(n)
	case *sqlexpr.Parameter:
		return r.parameter(n)
	case *sqlexpr.Function:
		return r.function(n)
	case *sqlexpr.Binary:
		if err := r.operand(n.Left); err != nil {
			return err
		}
		r.b.WriteString(" " + n.Op.Symbol() + " ")
		return r.operand(n.Right)
	case *sqlexpr.Any:
		if err := r.operand(n.Item); err != nil {
			return err
		}
		// A subquery keeps its own parentheses: ANY((SELECT a)) compares
		// with the elements of the array a, ANY(SELECT a) with each row.
		r.b.WriteString(" " + n.Op.Symbol() + " ANY(")
		if err := r.expr(n.Array); err != nil {
			return err
		}
		r.b.WriteByte(')')
	case *sqlexpr.Convert:
		if n.Mapping == nil {
			return fmt.Errorf("cast without target type")
		}
		if err := r.operand(n.Operand); err != nil {
			return err
		}
		r.b.WriteString("::" + n.Mapping.StoreType())
	case *sqlexpr.IfNotNull:
		r.b.WriteString("CASE WHEN ")
		if err := r.operand(n.Test); err != nil {
			return err
		}
		r.b.WriteString(" IS NULL THEN NULL ELSE ")
		if err := r.expr(n.Then); err != nil {
			return err
		}
		r.b.WriteString(" END")
	case *sqlexpr.NewArray:
		r.b.WriteString("ARRAY[")
		if err := r.list(n.Elements); err != nil {
			return err
		}
		r.b.WriteByte(']')
	case *sqlexpr.ScalarSubquery:
		r.b.WriteByte('(')
		if err := r.selectBody(n.Select); err != nil {
			return err
		}
		r.b.WriteByte(')')
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
	return nil
}

// operand renders e as the operand of an operator or cast, parenthesized
// when it is itself an operator expression.
func (r *renderer) operand(e sqlexpr.Expr) error {
	switch e.(type) {
	case *sqlexpr.Binary, *sqlexpr.Any:
		r.b.WriteByte('(')
		if err := r.expr(e); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	}
	return r.expr(e)
}

func (r *renderer) list(es []sqlexpr.Expr) error {
	for i, e := range es {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if err := r.expr(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) function(fn *sqlexpr.Function) error {
	// ARRAY(SELECT ...) collects the rows of a subquery.
	if fn.Name == "array" && len(fn.Args) == 1 {
		if sq, ok := fn.Args[0].(*sqlexpr.ScalarSubquery); ok {
			r.b.WriteString("ARRAY(")
			if err := r.selectBody(sq.Select); err != nil {
				return err
			}
			r.b.WriteByte(')')
			return nil
		}
	}
	r.b.WriteString(fn.Name)
	r.b.WriteByte('(')
	if err := r.list(fn.Args); err != nil {
		return err
	}
	r.b.WriteByte(')')
	return nil
}

func (r *renderer) selectBody(sel *sqlexpr.Select) error {
	r.b.WriteString("SELECT ")
	if err := r.list(sel.Projection); err != nil {
		return err
	}
	for i, tf := range sel.Tables {
		if i == 0 {
			r.b.WriteString(" FROM ")
		} else {
			r.b.WriteString(", ")
		}
		r.b.WriteString(tf.Name)
		r.b.WriteByte('(')
		if err := r.list(tf.Args); err != nil {
			return err
		}
		r.b.WriteString(") AS ")
		r.b.WriteString(QuoteIdent(tf.Alias))
	}
	return nil
}

func (r *renderer) constant(c *sqlexpr.Constant) error {
	v, err := eval.FromGo(c.Value, c.Mapping)
	if err != nil {
		return fmt.Errorf("constant: %w", err)
	}
	switch val := v.(type) {
	case nil:
		r.b.WriteString("NULL")
	case int64:
		r.b.WriteString(strconv.FormatInt(val, 10))
		return nil
	case bool:
		if val {
			r.b.WriteString("TRUE")
		} else {
			r.b.WriteString("FALSE")
		}
		return nil
	default:
		r.b.WriteString(QuoteLiteral(eval.Format(val)))
	}
	// Always cast: an untyped literal takes the type of the other operand,
	// so h - 'a' would parse 'a' as hstore.
	if st := storeType(c.Mapping); st != "" {
		r.b.WriteString("::" + st)
	}
	return nil
}

func (r *renderer) parameter(p *sqlexpr.Parameter) error {
	n, seen := r.index[p.Name]
	if !seen {
		raw, ok := r.params[p.Name]
		if !ok {
			return fmt.Errorf("parameter %q not bound", p.Name)
		}
		arg, err := ParamValue(raw, p.Mapping)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		r.args = append(r.args, arg)
		n = len(r.args)
		r.index[p.Name] = n
	}
	r.b.WriteString("$" + strconv.Itoa(n))
	if st := storeType(p.Mapping); st != "" {
		r.b.WriteString("::" + st)
	}
	return nil
}

// ParamValue converts a bound Go value to the argument a PostgreSQL driver
// receives for mapping m: scalars as themselves, dictionaries and arrays as
// their text form.
func ParamValue(v any, m *typemap.Mapping) (any, error) {
	rv, err := eval.FromGo(v, m)
	if err != nil {
		return nil, err
	}
	switch val := rv.(type) {
	case nil, string, int64, bool:
		return val, nil
	default:
		return eval.Format(val), nil
	}
}

func storeType(m *typemap.Mapping) string {
	if m == nil {
		return ""
	}
	return m.StoreType()
}

// QuoteIdent quotes a PostgreSQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a PostgreSQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
