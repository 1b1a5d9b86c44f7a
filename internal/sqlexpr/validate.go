package sqlexpr

import "fmt"

// ValidationResult lists structural problems of an expression tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each defect found, in traversal order.
	Problems []string
}

// Validate checks that a tree can be rendered as SQL:
//   - no nil children
//   - no Marker outside the argument list handed to the translator
//   - scalar subqueries project exactly one expression
//   - table functions have an alias and a name
//
// Validate is a pure function with no side effects.
func Validate(e Expr) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateExpr(e, "root")
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateExpr(e Expr, path string) {
	if e == nil {
		v.addProblem("%s: nil expression", path)
		return
	}

	switch n := e.(type) {
	case *Marker:
		v.addProblem("%s: call marker cannot be rendered", path)
	case *Column:
		if n.Name == "" {
			v.addProblem("%s: column without name", path)
		}
	case *Constant, *Parameter:
		// leaves
	case *Function:
		if n.Name == "" {
			v.addProblem("%s: function without name", path)
		}
		for i, arg := range n.Args {
			v.validateExpr(arg, fmt.Sprintf("%s.%s[%d]", path, n.Name, i))
		}
	case *Binary:
		v.validateExpr(n.Left, path+".left")
		v.validateExpr(n.Right, path+".right")
	case *Any:
		v.validateExpr(n.Item, path+".item")
		v.validateExpr(n.Array, path+".array")
	case *Convert:
		if n.Mapping == nil {
			v.addProblem("%s: cast without target mapping", path)
		}
		v.validateExpr(n.Operand, path+".operand")
	case *IfNotNull:
		if n.Test == nil || n.Then == nil {
			v.addProblem("%s: incomplete CASE", path)
			return
		}
		v.validateExpr(n.Test, path+".when")
		v.validateExpr(n.Then, path+".else")
	case *NewArray:
		for i, el := range n.Elements {
			v.validateExpr(el, fmt.Sprintf("%s.array[%d]", path, i))
		}
	case *ScalarSubquery:
		v.validateSelect(n.Select, path+".subquery")
	default:
		v.addProblem("%s: unknown expression type %T", path, e)
	}
}

func (v *validator) validateSelect(s *Select, path string) {
	if s == nil {
		v.addProblem("%s: nil select", path)
		return
	}
	if len(s.Projection) != 1 {
		v.addProblem("%s: scalar subquery must project one expression, got %d", path, len(s.Projection))
	}
	for i, t := range s.Tables {
		if t == nil {
			v.addProblem("%s.from[%d]: nil table function", path, i)
			continue
		}
		if t.Alias == "" || t.Name == "" {
			v.addProblem("%s.from[%d]: table function needs name and alias", path, i)
		}
		for j, arg := range t.Args {
			v.validateExpr(arg, fmt.Sprintf("%s.from[%d].%s[%d]", path, i, t.Name, j))
		}
	}
	for i, p := range s.Projection {
		v.validateExpr(p, fmt.Sprintf("%s.projection[%d]", path, i))
	}
}
