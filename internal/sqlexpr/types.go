package sqlexpr

import "github.com/roach88/pgdict/internal/typemap"

// Expr is a node of the query-expression tree.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	// Shape returns the value type of the expression.
	Shape() typemap.Shape

	// TypeMapping returns the store mapping, or nil when none was assigned.
	TypeMapping() *typemap.Mapping

	exprNode() // Marker method - seals interface to this package
}

// Marker is the data-less receiver passed as the first argument of catalog
// extension calls. It only identifies the call as translatable.
type Marker struct{}

func (*Marker) Shape() typemap.Shape          { return typemap.Shape{} }
func (*Marker) TypeMapping() *typemap.Mapping { return nil }
func (*Marker) exprNode()                     {}

// Column references a column of a table or of a table-function alias.
//
// Renders as:
//
//	"table"."name"
type Column struct {
	Table    string
	Name     string
	Type     typemap.Shape
	Mapping  *typemap.Mapping
	Nullable bool
}

func (c *Column) Shape() typemap.Shape          { return c.Type }
func (c *Column) TypeMapping() *typemap.Mapping { return c.Mapping }
func (*Column) exprNode()                       {}

// Constant is a literal rendered inline.
//
// Constants carry no runtime representation until rendered, so representation
// changes are expressed by swapping Mapping rather than by wrapping a Convert.
type Constant struct {
	Value   any
	Type    typemap.Shape
	Mapping *typemap.Mapping
}

func (c *Constant) Shape() typemap.Shape          { return c.Type }
func (c *Constant) TypeMapping() *typemap.Mapping { return c.Mapping }
func (*Constant) exprNode()                       {}

// Parameter is a value bound at execution time, looked up by Name.
type Parameter struct {
	Name    string
	Type    typemap.Shape
	Mapping *typemap.Mapping
}

func (p *Parameter) Shape() typemap.Shape          { return p.Type }
func (p *Parameter) TypeMapping() *typemap.Mapping { return p.Mapping }
func (*Parameter) exprNode()                       {}

// Function is a scalar function call. Set-returning functions appear as
// Function nodes inside a Select projection.
type Function struct {
	Name    string
	Args    []Expr
	Type    typemap.Shape
	Mapping *typemap.Mapping
}

func (f *Function) Shape() typemap.Shape          { return f.Type }
func (f *Function) TypeMapping() *typemap.Mapping { return f.Mapping }
func (*Function) exprNode()                       {}

// Binary applies a binary operator.
type Binary struct {
	Op      Operator
	Left    Expr
	Right   Expr
	Type    typemap.Shape
	Mapping *typemap.Mapping
}

func (b *Binary) Shape() typemap.Shape          { return b.Type }
func (b *Binary) TypeMapping() *typemap.Mapping { return b.Mapping }
func (*Binary) exprNode()                       {}

// Any is item <op> ANY(array). Only OpEqual is produced by the translator.
type Any struct {
	Item    Expr
	Array   Expr
	Op      Operator
	Mapping *typemap.Mapping
}

func (a *Any) Shape() typemap.Shape          { return typemap.Bool }
func (a *Any) TypeMapping() *typemap.Mapping { return a.Mapping }
func (*Any) exprNode()                       {}

// Convert casts Operand to Mapping's store type.
type Convert struct {
	Operand Expr
	Type    typemap.Shape
	Mapping *typemap.Mapping
}

func (c *Convert) Shape() typemap.Shape          { return c.Type }
func (c *Convert) TypeMapping() *typemap.Mapping { return c.Mapping }
func (*Convert) exprNode()                       {}

// IfNotNull is Then when Test is not NULL, NULL otherwise:
//
//	CASE WHEN test IS NULL THEN NULL ELSE then END
type IfNotNull struct {
	Test Expr
	Then Expr
}

func (c *IfNotNull) Shape() typemap.Shape {
	if c.Then == nil {
		return typemap.Shape{}
	}
	return c.Then.Shape()
}

func (c *IfNotNull) TypeMapping() *typemap.Mapping {
	if c.Then == nil {
		return nil
	}
	return c.Then.TypeMapping()
}

func (*IfNotNull) exprNode() {}

// NewArray builds an array from its elements: ARRAY[e1, e2].
type NewArray struct {
	Elements []Expr
	Type     typemap.Shape
	Mapping  *typemap.Mapping
}

func (a *NewArray) Shape() typemap.Shape          { return a.Type }
func (a *NewArray) TypeMapping() *typemap.Mapping { return a.Mapping }
func (*NewArray) exprNode()                       {}

// ScalarSubquery is a single-row, single-column subquery used as a value.
// Its shape and mapping are those of the single projection.
type ScalarSubquery struct {
	Select *Select
}

func (s *ScalarSubquery) Shape() typemap.Shape {
	if p := s.Select.single(); p != nil {
		return p.Shape()
	}
	return typemap.Shape{}
}

func (s *ScalarSubquery) TypeMapping() *typemap.Mapping {
	if p := s.Select.single(); p != nil {
		return p.TypeMapping()
	}
	return nil
}

func (*ScalarSubquery) exprNode() {}

// Select is the body of a subquery:
//
//	SELECT <projection> FROM <tables>
//
// Tables are set-returning functions joined as a cross product (in practice
// zero or one). Columns of a table are referenced as Column{Table: alias}.
type Select struct {
	Tables     []*TableFunction
	Projection []Expr
}

func (s *Select) single() Expr {
	if s == nil || len(s.Projection) != 1 {
		return nil
	}
	return s.Projection[0]
}

// TableFunction is a set-returning function in a FROM clause:
//
//	name(args) AS alias
//
// The decomposition functions json_each_text and jsonb_each_text produce the
// columns "key" and "value".
type TableFunction struct {
	Alias string
	Name  string
	Args  []Expr
}
