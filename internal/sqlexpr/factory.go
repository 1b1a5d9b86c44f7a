package sqlexpr

import "github.com/roach88/pgdict/internal/typemap"

// Factory builds nodes with mappings resolved from a registry.
//
// A Factory holds only read-only state and is safe for concurrent use.
type Factory struct {
	boolMapping *typemap.Mapping
	intMapping  *typemap.Mapping
}

// NewFactory creates a Factory backed by reg.
func NewFactory(reg *typemap.Registry) *Factory {
	return &Factory{
		boolMapping: reg.FindByShape(typemap.Bool),
		intMapping:  reg.FindByShape(typemap.Int),
	}
}

// IsLiteral reports whether e is a Constant or a Parameter.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *Constant, *Parameter:
		return true
	}
	return false
}

// ApplyTypeMapping returns e represented with mapping m.
//
// Constants and parameters are copied with the new mapping; other nodes are
// wrapped in a Convert. When e already has mapping m it is returned as is.
func (f *Factory) ApplyTypeMapping(e Expr, m *typemap.Mapping) Expr {
	if e.TypeMapping() == m {
		return e
	}
	switch n := e.(type) {
	case *Constant:
		return &Constant{Value: n.Value, Type: n.Type, Mapping: m}
	case *Parameter:
		return &Parameter{Name: n.Name, Type: n.Type, Mapping: m}
	default:
		return f.Convert(e, e.Shape(), m)
	}
}

// Convert casts e to m, keeping shape as the value type.
func (f *Factory) Convert(e Expr, shape typemap.Shape, m *typemap.Mapping) *Convert {
	return &Convert{Operand: e, Type: shape, Mapping: m}
}

// IfNotNull builds CASE WHEN test IS NULL THEN NULL ELSE then END.
func (f *Factory) IfNotNull(test, then Expr) *IfNotNull {
	return &IfNotNull{Test: test, Then: then}
}

// Function builds name(args...).
func (f *Factory) Function(name string, shape typemap.Shape, m *typemap.Mapping, args ...Expr) *Function {
	return &Function{Name: name, Args: args, Type: shape, Mapping: m}
}

// Binary builds left <op> right with an explicit result type.
func (f *Factory) Binary(op Operator, left, right Expr, shape typemap.Shape, m *typemap.Mapping) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Type: shape, Mapping: m}
}

// Compare builds a boolean left <op> right.
func (f *Factory) Compare(op Operator, left, right Expr) *Binary {
	return f.Binary(op, left, right, typemap.Bool, f.boolMapping)
}

// Equal builds left = right.
func (f *Factory) Equal(left, right Expr) *Binary {
	return f.Compare(OpEqual, left, right)
}

// NotEqual builds left <> right.
func (f *Factory) NotEqual(left, right Expr) *Binary {
	return f.Compare(OpNotEqual, left, right)
}

// Constant builds a literal.
func (f *Factory) Constant(v any, shape typemap.Shape, m *typemap.Mapping) *Constant {
	return &Constant{Value: v, Type: shape, Mapping: m}
}

// Int builds an integer literal.
func (f *Factory) Int(n int64) *Constant {
	return f.Constant(n, typemap.Int, f.intMapping)
}

// Any builds item = ANY(array).
func (f *Factory) Any(item, array Expr) *Any {
	return &Any{Item: item, Array: array, Op: OpEqual, Mapping: f.boolMapping}
}

// NewArray builds ARRAY[elems...].
func (f *Factory) NewArray(shape typemap.Shape, m *typemap.Mapping, elems ...Expr) *NewArray {
	return &NewArray{Elements: elems, Type: shape, Mapping: m}
}

// Subquery builds (SELECT projection FROM tables).
func (f *Factory) Subquery(tables []*TableFunction, projection Expr) *ScalarSubquery {
	return &ScalarSubquery{Select: &Select{Tables: tables, Projection: []Expr{projection}}}
}
