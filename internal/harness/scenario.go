package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pgdict/internal/catalog"
)

// Scenario is a request plus the outcome it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	Request `yaml:",inline"`

	// Expect is required for scenarios run by Run.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Request describes one operation to translate.
type Request struct {
	// Op is a qualified operation name, e.g. "fn.Remove" or "dict.Item".
	Op string `yaml:"op,omitempty"`

	// Member is a member read (Keys, Values, Count, IsEmpty). Exclusive
	// with Op.
	Member string `yaml:"member,omitempty"`

	// TypeArgs are the generic shapes the call was resolved with, e.g.
	// pairs<string,string> for seq.Any over a dictionary.
	TypeArgs []string `yaml:"type_args,omitempty"`

	// Returns is the declared result shape.
	Returns string `yaml:"returns,omitempty"`

	// Instance is the receiver of dict.* methods and members.
	Instance *Operand `yaml:"instance,omitempty"`

	Operands []Operand `yaml:"operands,omitempty"`
}

// Operand binds one operand of a request.
type Operand struct {
	Column string `yaml:"column,omitempty"`
	Param  string `yaml:"param,omitempty"`

	// Call is a nested request whose translation is the operand.
	Call *Request `yaml:"call,omitempty"`

	Store string `yaml:"store,omitempty"`
	Shape string `yaml:"shape,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Expect is the expected outcome of a scenario.
type Expect struct {
	NotApplicable bool `yaml:"not_applicable,omitempty"`

	// SQL is compared exactly when set.
	SQL string `yaml:"sql,omitempty"`

	Args []any `yaml:"args,omitempty"`

	// Result is compared with the evaluated value when HasResult.
	Result any `yaml:"result"`

	// HasResult is set by LoadScenario when the result key is present,
	// so that "result: null" expects SQL NULL.
	HasResult bool `yaml:"-"`
}

// UnmarshalYAML records whether result was given.
func (e *Expect) UnmarshalYAML(node *yaml.Node) error {
	type plain Expect
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Expect(p)
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch key := node.Content[i].Value; key {
		case "result":
			e.HasResult = true
		case "not_applicable", "sql", "args":
		default:
			return fmt.Errorf("line %d: field %s not found in expect", node.Content[i].Line, key)
		}
	}
	return nil
}

// OpName returns the operation name for display and journaling:
// the qualified op, or "member.<Name>".
func (r *Request) OpName() string {
	if r.Member != "" {
		return "member." + r.Member
	}
	return r.Op
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := decodeStrict(data, &scenario); err != nil {
		return nil, err
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadRequest reads a request YAML file: a scenario without name or
// expectations.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	var req Request
	if err := decodeStrict(data, &req); err != nil {
		return nil, err
	}
	if err := validateRequest(&req, "request"); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file
// name. Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{Path: dir}
		}
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", p, s.Name, prev)
		}
		seen[s.Name] = p
		out = append(out, s)
	}
	return out, nil
}

// ScenarioNotFoundError is returned when a scenario file or directory
// doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain path separators or spaces", s.Name)
	}
	if s.Expect == nil {
		return fmt.Errorf("expect is required")
	}
	if s.Expect.NotApplicable && (s.Expect.SQL != "" || s.Expect.HasResult || len(s.Expect.Args) > 0) {
		return fmt.Errorf("expect: not_applicable excludes sql, args and result")
	}
	return validateRequest(&s.Request, "request")
}

func validateRequest(r *Request, path string) error {
	switch {
	case r.Op == "" && r.Member == "":
		return fmt.Errorf("%s: op or member is required", path)
	case r.Op != "" && r.Member != "":
		return fmt.Errorf("%s: op and member are exclusive", path)
	}

	if r.Member != "" {
		if catalog.ParseMember(r.Member) == catalog.MemberUnknown {
			return fmt.Errorf("%s: unknown member %q", path, r.Member)
		}
		if r.Instance == nil {
			return fmt.Errorf("%s: member %s requires an instance", path, r.Member)
		}
		if len(r.Operands) > 0 {
			return fmt.Errorf("%s: member %s takes no operands", path, r.Member)
		}
	} else {
		op, ok := catalog.ParseOp(r.Op)
		if !ok {
			return fmt.Errorf("%s: unknown op %q", path, r.Op)
		}
		isMethod := op.Spec().Kind == catalog.KindMethod
		if isMethod && r.Instance == nil {
			return fmt.Errorf("%s: %s requires an instance", path, r.Op)
		}
		if !isMethod && r.Instance != nil {
			return fmt.Errorf("%s: %s takes no instance", path, r.Op)
		}
	}

	if r.Instance != nil {
		if err := validateOperand(r.Instance, path+".instance"); err != nil {
			return err
		}
	}
	for i := range r.Operands {
		if err := validateOperand(&r.Operands[i], fmt.Sprintf("%s.operands[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateOperand(o *Operand, path string) error {
	set := 0
	for _, b := range []bool{o.Column != "", o.Param != "", o.Call != nil} {
		if b {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("%s: column, param and call are exclusive", path)
	}
	if o.Call != nil {
		if o.Store != "" || o.Shape != "" || o.Value != nil {
			return fmt.Errorf("%s: call operands take no store, shape or value", path)
		}
		return validateRequest(o.Call, path+".call")
	}
	return nil
}

// Canonical returns req as plain maps and slices, suitable for
// value.MarshalCanonical and request fingerprints.
func (r *Request) Canonical() map[string]any {
	m := map[string]any{}
	if r.Op != "" {
		m["op"] = r.Op
	}
	if r.Member != "" {
		m["member"] = r.Member
	}
	if len(r.TypeArgs) > 0 {
		args := make([]any, len(r.TypeArgs))
		for i, a := range r.TypeArgs {
			args[i] = a
		}
		m["type_args"] = args
	}
	if r.Returns != "" {
		m["returns"] = r.Returns
	}
	if r.Instance != nil {
		m["instance"] = r.Instance.canonical()
	}
	if len(r.Operands) > 0 {
		ops := make([]any, len(r.Operands))
		for i := range r.Operands {
			ops[i] = r.Operands[i].canonical()
		}
		m["operands"] = ops
	}
	return m
}

func (o *Operand) canonical() map[string]any {
	m := map[string]any{}
	for k, v := range map[string]string{"column": o.Column, "param": o.Param, "store": o.Store, "shape": o.Shape} {
		if v != "" {
			m[k] = v
		}
	}
	if o.Call != nil {
		m["call"] = o.Call.Canonical()
	}
	if o.Value != nil {
		m["value"] = o.Value
	}
	return m
}
