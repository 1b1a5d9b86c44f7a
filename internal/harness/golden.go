package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pgdict/internal/value"
)

// Snapshot renders the parts of an outcome a golden file records, as
// canonical JSON.
func Snapshot(name string, out *Outcome) ([]byte, error) {
	m := map[string]any{
		"name":       name,
		"op":         out.Op,
		"applicable": out.Applicable,
	}
	if out.Applicable {
		args := out.Args
		if args == nil {
			args = []any{}
		}
		m["sql"] = out.SQL
		m["args"] = args
		if out.Text != nil {
			m["result"] = *out.Text
		} else {
			m["eval_error"] = out.EvalError
		}
	}
	return value.MarshalCanonical(m)
}

// RunWithGolden executes a scenario with h and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check the expectations.
func (h *Harness) RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := h.Run(scenario)
	if err != nil {
		return nil, err
	}
	snapshot, err := Snapshot(scenario.Name, result.Outcome)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
	return result, nil
}
