package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pgdict/internal/catalog"
	"github.com/roach88/pgdict/internal/eval"
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/sqlgen"
	"github.com/roach88/pgdict/internal/translate"
	"github.com/roach88/pgdict/internal/typemap"
)

// Table is the table every scenario column belongs to.
const Table = "t"

// Harness translates, renders and evaluates requests.
//
// Thread-safety: a Harness holds no per-request state and is safe for
// concurrent use.
type Harness struct {
	tr     *translate.Translator
	reg    *typemap.Registry
	f      *sqlexpr.Factory
	logger *slog.Logger
}

// New creates a harness over a translator and the registry it was built
// with. A nil logger discards translator diagnostics.
func New(tr *translate.Translator, reg *typemap.Registry, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{tr: tr, reg: reg, f: sqlexpr.NewFactory(reg), logger: logger}
}

// Default creates a harness over the built-in mappings and default
// translator options.
func Default() (*Harness, error) {
	reg := typemap.Default()
	tr, err := translate.New(reg, translate.Options{})
	if err != nil {
		return nil, err
	}
	return New(tr, reg, nil), nil
}

// Run executes a scenario with the default harness.
func Run(scenario *Scenario) (*Result, error) {
	h, err := Default()
	if err != nil {
		return nil, err
	}
	return h.Run(scenario)
}

// Run executes a scenario and checks its expectations. The error is
// reserved for malformed scenarios; failed expectations are reported in
// the Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if scenario.Expect == nil {
		return nil, fmt.Errorf("scenario %s: expect is required", scenario.Name)
	}
	outcome, err := h.Execute(&scenario.Request)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(outcome)
	for _, failure := range CheckExpect(outcome, scenario.Expect) {
		result.AddError(failure.Error())
	}
	h.logger.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// bindings collects the values of the columns and parameters a request
// references.
type bindings struct {
	env eval.Env
}

// Execute translates req, renders the translation and evaluates it.
// A request the translator declines is not an error: the Outcome reports
// it as not applicable.
func (h *Harness) Execute(req *Request) (*Outcome, error) {
	b := &bindings{env: eval.Env{Columns: map[string]any{}, Params: map[string]any{}}}
	out := &Outcome{Op: req.OpName()}

	e, ok, err := h.build(req, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return out, nil
	}
	out.Applicable = true

	gen := sqlgen.NewGenerator()
	for name, v := range b.env.Params {
		gen.Params[name] = v
	}
	out.SQL, out.Args, err = gen.Generate(e)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", out.Op, err)
	}

	v, err := eval.Evaluate(e, b.env)
	if err != nil {
		out.EvalError = err.Error()
		return out, nil
	}
	text := eval.Format(v)
	out.Value, out.Text = v, &text
	return out, nil
}

func (h *Harness) build(req *Request, b *bindings) (sqlexpr.Expr, bool, error) {
	var instance sqlexpr.Expr
	if req.Instance != nil {
		e, ok, err := h.operand(req.Instance, b)
		if err != nil || !ok {
			return nil, ok, err
		}
		instance = e
	}

	if req.Member != "" {
		ret, err := optionalShape(req.Returns)
		if err != nil {
			return nil, false, err
		}
		e, ok := h.tr.TranslateMember(instance, req.Member, ret, h.logger)
		return e, ok, nil
	}

	op, ok := catalog.ParseOp(req.Op)
	if !ok {
		return nil, false, fmt.Errorf("unknown op %q", req.Op)
	}
	sig, err := signature(op, req)
	if err != nil {
		return nil, false, err
	}

	var args []sqlexpr.Expr
	if op.Spec().Kind == catalog.KindExtension {
		args = append(args, &sqlexpr.Marker{})
	}
	for i := range req.Operands {
		e, ok, err := h.operand(&req.Operands[i], b)
		if err != nil || !ok {
			return nil, ok, err
		}
		args = append(args, e)
	}

	e, ok := h.tr.TranslateCall(instance, sig, args, h.logger)
	return e, ok, nil
}

func signature(op catalog.Op, req *Request) (catalog.Signature, error) {
	typeArgs := make([]typemap.Shape, len(req.TypeArgs))
	for i, s := range req.TypeArgs {
		shape, err := typemap.ParseShape(s)
		if err != nil {
			return catalog.Signature{}, fmt.Errorf("type_args[%d]: %w", i, err)
		}
		typeArgs[i] = shape
	}
	ret, err := optionalShape(req.Returns)
	if err != nil {
		return catalog.Signature{}, err
	}
	return catalog.Call(op, typeArgs...).Returning(ret), nil
}

func optionalShape(s string) (typemap.Shape, error) {
	if s == "" {
		return typemap.Shape{}, nil
	}
	shape, err := typemap.ParseShape(s)
	if err != nil {
		return typemap.Shape{}, fmt.Errorf("returns: %w", err)
	}
	return shape, nil
}

// operand builds the expression for o. A nested call the translator
// declines makes the enclosing request not applicable.
func (h *Harness) operand(o *Operand, b *bindings) (sqlexpr.Expr, bool, error) {
	if o.Call != nil {
		return h.build(o.Call, b)
	}

	shape := typemap.StringDict
	if o.Shape != "" {
		s, err := typemap.ParseShape(o.Shape)
		if err != nil {
			return nil, false, err
		}
		shape = s
	}
	var m *typemap.Mapping
	if o.Store != "" {
		m = h.reg.Find(o.Store, shape)
	} else {
		m = h.reg.FindByShape(shape)
	}
	if m == nil {
		return nil, false, fmt.Errorf("no mapping for store %q and shape %s", o.Store, shape)
	}

	switch {
	case o.Column != "":
		b.env.Columns[Table+"."+o.Column] = o.Value
		return &sqlexpr.Column{Table: Table, Name: o.Column, Type: shape, Mapping: m, Nullable: o.Value == nil}, true, nil
	case o.Param != "":
		b.env.Params[o.Param] = o.Value
		return &sqlexpr.Parameter{Name: o.Param, Type: shape, Mapping: m}, true, nil
	default:
		return h.f.Constant(o.Value, shape, m), true, nil
	}
}
