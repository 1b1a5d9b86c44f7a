package harness

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/pgdict/internal/eval"
)

// Assertion types reported in AssertionError.Type.
const (
	AssertApplicable = "applicable"
	AssertSQL        = "sql"
	AssertArgs       = "args"
	AssertResult     = "result"
)

// AssertionError is returned when an expectation fails.
// It includes the rendered SQL to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SQL      string // Rendered SQL, empty when not applicable
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
	}
	return buf.String()
}

// CheckExpect compares an outcome with its expectations and returns one
// error per failed check. Once applicability fails nothing else is checked.
func CheckExpect(out *Outcome, expect *Expect) []*AssertionError {
	if out.Applicable == expect.NotApplicable {
		return []*AssertionError{{
			Type:     AssertApplicable,
			Expected: describeApplicable(!expect.NotApplicable),
			Actual:   describeApplicable(out.Applicable),
			SQL:      out.SQL,
		}}
	}
	if !out.Applicable {
		return nil
	}

	var failures []*AssertionError
	if expect.SQL != "" && expect.SQL != out.SQL {
		failures = append(failures, &AssertionError{
			Type:     AssertSQL,
			Expected: expect.SQL,
			Actual:   out.SQL,
		})
	}
	if expect.Args != nil {
		if err := assertArgs(out, expect.Args); err != nil {
			failures = append(failures, err)
		}
	}
	if expect.HasResult {
		if err := assertResult(out, expect.Result); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

func describeApplicable(ok bool) string {
	if ok {
		return "translatable"
	}
	return "not applicable"
}

func assertArgs(out *Outcome, expected []any) *AssertionError {
	want := make([]any, len(expected))
	for i, v := range expected {
		want[i] = normalizeScalar(v)
	}
	got := out.Args
	if got == nil {
		got = []any{}
	}
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertArgs,
		Expected: fmt.Sprintf("%#v", want),
		Actual:   fmt.Sprintf("%#v", got),
		SQL:      out.SQL,
	}
}

func assertResult(out *Outcome, expected any) *AssertionError {
	want, err := ExpectedText(expected)
	if err != nil {
		return &AssertionError{Type: AssertResult, Expected: fmt.Sprintf("%v", expected), Actual: err.Error(), SQL: out.SQL}
	}
	if out.Text == nil {
		return &AssertionError{
			Type:     AssertResult,
			Expected: want,
			Actual:   "evaluation error: " + out.EvalError,
			SQL:      out.SQL,
		}
	}
	if *out.Text != want {
		return &AssertionError{Type: AssertResult, Expected: want, Actual: *out.Text, SQL: out.SQL}
	}
	return nil
}

// ExpectedText renders an expected result the way eval.Format renders the
// evaluated value: null as NULL, lists as array literals.
func ExpectedText(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case []any:
		arr := make([]any, len(val))
		for i, el := range val {
			switch el.(type) {
			case nil, string, bool, int, int64:
				arr[i] = normalizeScalar(el)
			default:
				return "", fmt.Errorf("result[%d]: unsupported %T", i, el)
			}
		}
		return eval.Format(arr), nil
	default:
		return "", fmt.Errorf("unsupported expected result %T; write dictionaries as text", v)
	}
}

func normalizeScalar(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}
