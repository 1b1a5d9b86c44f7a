package eval

import (
	"fmt"

	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/value"
)

// selectRows evaluates a subquery body to the values of its single
// projection, one per output row.
func (ev *evaluator) selectRows(sel *sqlexpr.Select) ([]any, error) {
	if sel == nil || len(sel.Projection) != 1 {
		return nil, fmt.Errorf("subquery must project exactly one expression")
	}
	scopes, err := ev.tableRows(sel.Tables)
	if err != nil {
		return nil, err
	}
	proj := sel.Projection[0]

	if hasAggregate(proj) {
		v, err := ev.aggregate(proj, scopes)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	var out []any
	for _, s := range scopes {
		vals, err := ev.withScope(s, func() ([]any, error) { return ev.project(proj) })
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// tableRows produces one scope per row of the FROM clause. Without a FROM
// clause there is exactly one empty row.
func (ev *evaluator) tableRows(tables []*sqlexpr.TableFunction) ([]*rowScope, error) {
	switch len(tables) {
	case 0:
		return []*rowScope{nil}, nil
	case 1:
	default:
		return nil, fmt.Errorf("FROM with %d table functions: %w", len(tables), ErrUnsupported)
	}
	tf := tables[0]
	if len(tf.Args) != 1 {
		return nil, fmt.Errorf("%s takes one argument", tf.Name)
	}
	src, err := ev.eval(tf.Args[0])
	if err != nil {
		return nil, err
	}

	var members []value.Member
	switch tf.Name {
	case "json_each_text":
		j, ok := src.(JSONText)
		if src != nil && !ok {
			return nil, fmt.Errorf("function json_each_text(%s) does not exist", typeName(src))
		}
		if ok {
			if members, err = value.ParseObject(string(j)); err != nil {
				return nil, err
			}
		}
	case "jsonb_each_text":
		o, ok := src.(value.Object)
		if src != nil && !ok {
			return nil, fmt.Errorf("function jsonb_each_text(%s) does not exist", typeName(src))
		}
		members = o.Members()
	default:
		return nil, fmt.Errorf("table function %s: %w", tf.Name, ErrUnsupported)
	}

	scopes := make([]*rowScope, 0, len(members))
	for _, m := range members {
		text, err := value.MemberText(m.Value)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, &rowScope{
			alias: tf.Alias,
			cols:  map[string]any{"key": m.Key, "value": nullableText(text)},
		})
	}
	return scopes, nil
}

func (ev *evaluator) withScope(s *rowScope, fn func() ([]any, error)) ([]any, error) {
	if s != nil {
		ev.push(*s)
		defer ev.pop()
	}
	return fn()
}

// project evaluates the projection for the current row; set-returning
// functions expand to several values.
func (ev *evaluator) project(proj sqlexpr.Expr) ([]any, error) {
	fn, ok := proj.(*sqlexpr.Function)
	if !ok || !setReturning[fn.Name] {
		v, err := ev.eval(proj)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	args, err := ev.evalAll(fn.Args)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes one argument", fn.Name)
	}
	if args[0] == nil {
		return nil, nil
	}
	switch fn.Name {
	case "unnest":
		arr, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("function unnest(%s) does not exist", typeName(args[0]))
		}
		return arr, nil
	case "json_object_keys":
		j, ok := args[0].(JSONText)
		if !ok {
			return nil, fmt.Errorf("function json_object_keys(%s) does not exist", typeName(args[0]))
		}
		members, err := value.ParseObject(string(j))
		if err != nil {
			return nil, err
		}
		// json_object_keys skips repeated keys.
		seen := map[string]bool{}
		var out []any
		for _, m := range members {
			if !seen[m.Key] {
				seen[m.Key] = true
				out = append(out, m.Key)
			}
		}
		return out, nil
	case "jsonb_object_keys":
		o, ok := args[0].(value.Object)
		if !ok {
			return nil, fmt.Errorf("function jsonb_object_keys(%s) does not exist", typeName(args[0]))
		}
		var out []any
		for _, k := range o.Keys() {
			out = append(out, k)
		}
		return out, nil
	}
	return nil, fmt.Errorf("function %s: %w", fn.Name, ErrUnsupported)
}

func hasAggregate(e sqlexpr.Expr) bool {
	fn, ok := e.(*sqlexpr.Function)
	if !ok {
		return false
	}
	if fn.Name == "array_agg" {
		return true
	}
	for _, a := range fn.Args {
		if hasAggregate(a) {
			return true
		}
	}
	return false
}

// aggregate evaluates an aggregate projection over all rows. array_agg over
// no rows is NULL; wrap it in coalesce for an empty array.
func (ev *evaluator) aggregate(e sqlexpr.Expr, scopes []*rowScope) (any, error) {
	switch n := e.(type) {
	case *sqlexpr.Function:
		if n.Name == "array_agg" {
			if len(n.Args) != 1 {
				return nil, fmt.Errorf("array_agg takes one argument")
			}
			if len(scopes) == 0 {
				return nil, nil
			}
			var out []any
			for _, s := range scopes {
				vals, err := ev.withScope(s, func() ([]any, error) {
					v, err := ev.eval(n.Args[0])
					return []any{v}, err
				})
				if err != nil {
					return nil, err
				}
				out = append(out, vals...)
			}
			return out, nil
		}
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			v, err := ev.aggregate(a, scopes)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return apply(n.Name, args)
	case *sqlexpr.Constant, *sqlexpr.Parameter, *sqlexpr.IfNotNull:
		return ev.eval(e)
	}
	return nil, fmt.Errorf("%T outside of an aggregate: %w", e, ErrUnsupported)
}
