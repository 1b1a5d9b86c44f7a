// Package eval evaluates expression trees in memory with PostgreSQL
// semantics for the hstore, json and jsonb operators and functions the
// translator emits.
//
// It is a reference implementation for checking translations: it follows
// PostgreSQL for NULL propagation, key order and duplicate handling, and
// reports anything it does not model as an error rather than guessing.
//
// Runtime values:
//
//	SQL NULL        nil
//	text            string
//	integer         int64
//	boolean         bool
//	arrays          []any
//	hstore          value.Dict
//	json            JSONText
//	jsonb           value.Object
package eval

import (
	"errors"
	"fmt"

	"github.com/roach88/pgdict/internal/sqlexpr"
)

// JSONText is a json value: the text as stored.
type JSONText string

// Env supplies column and parameter values. Values are converted to the
// runtime value of the expression's mapping, see FromGo.
type Env struct {
	// Columns is keyed by "table.name", or by "name" for columns without
	// a table.
	Columns map[string]any

	// Params is keyed by parameter name.
	Params map[string]any
}

// ErrUnsupported is wrapped by errors for constructs the evaluator does not
// model.
var ErrUnsupported = errors.New("unsupported")

// Evaluate computes the value of e in env.
func Evaluate(e sqlexpr.Expr, env Env) (any, error) {
	ev := &evaluator{env: env}
	return ev.eval(e)
}

type evaluator struct {
	env    Env
	scopes []rowScope
}

// rowScope is the current row of a table function, visible to columns
// qualified with its alias.
type rowScope struct {
	alias string
	cols  map[string]any
}

func (ev *evaluator) push(s rowScope) { ev.scopes = append(ev.scopes, s) }
func (ev *evaluator) pop()            { ev.scopes = ev.scopes[:len(ev.scopes)-1] }

func (ev *evaluator) eval(e sqlexpr.Expr) (any, error) {
	switch n := e.(type) {
	case nil:
		return nil, fmt.Errorf("nil expression")
	case *sqlexpr.Constant:
		return FromGo(n.Value, n.Mapping)
	case *sqlexpr.Parameter:
		v, ok := ev.env.Params[n.Name]
		if !ok {
			return nil, fmt.Errorf("parameter %q not bound", n.Name)
		}
		return FromGo(v, n.Mapping)
	case *sqlexpr.Column:
		return ev.column(n)
	case *sqlexpr.Convert:
		v, err := ev.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return Cast(v, n.Mapping)
	case *sqlexpr.Function:
		return ev.function(n)
	case *sqlexpr.Binary:
		l, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, l, r)
	case *sqlexpr.Any:
		return ev.anyOf(n)
	case *sqlexpr.IfNotNull:
		test, err := ev.eval(n.Test)
		if err != nil || test == nil {
			return nil, err
		}
		return ev.eval(n.Then)
	case *sqlexpr.NewArray:
		out := make([]any, len(n.Elements))
		for i, el := range n.Elements {
			v, err := ev.eval(el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *sqlexpr.ScalarSubquery:
		rows, err := ev.selectRows(n.Select)
		if err != nil {
			return nil, err
		}
		switch len(rows) {
		case 0:
			return nil, nil
		case 1:
			return rows[0], nil
		default:
			return nil, fmt.Errorf("more than one row returned by a subquery used as an expression")
		}
	case *sqlexpr.Marker:
		return nil, fmt.Errorf("call marker has no value: %w", ErrUnsupported)
	default:
		return nil, fmt.Errorf("expression %T: %w", e, ErrUnsupported)
	}
}

func (ev *evaluator) column(c *sqlexpr.Column) (any, error) {
	if c.Table != "" {
		for i := len(ev.scopes) - 1; i >= 0; i-- {
			s := ev.scopes[i]
			if s.alias != c.Table {
				continue
			}
			v, ok := s.cols[c.Name]
			if !ok {
				return nil, fmt.Errorf("column %s.%s does not exist", c.Table, c.Name)
			}
			return v, nil
		}
	}
	key := c.Name
	if c.Table != "" {
		key = c.Table + "." + c.Name
	}
	v, ok := ev.env.Columns[key]
	if !ok {
		return nil, fmt.Errorf("column %s not bound", key)
	}
	return FromGo(v, c.Mapping)
}

// anyOf is item = ANY(array) with SQL three-valued logic.
func (ev *evaluator) anyOf(a *sqlexpr.Any) (any, error) {
	if a.Op != sqlexpr.OpEqual {
		return nil, fmt.Errorf("ANY with %s: %w", a.Op, ErrUnsupported)
	}
	item, err := ev.eval(a.Item)
	if err != nil {
		return nil, err
	}
	arr, err := ev.eval(a.Array)
	if err != nil {
		return nil, err
	}
	if item == nil || arr == nil {
		return nil, nil
	}
	elems, ok := arr.([]any)
	if !ok {
		return nil, fmt.Errorf("ANY over %T", arr)
	}
	sawNull := false
	for _, el := range elems {
		if el == nil {
			sawNull = true
			continue
		}
		eq, err := equal(item, el)
		if err != nil {
			return nil, err
		}
		if eq {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return false, nil
}
