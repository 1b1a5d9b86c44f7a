package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textPtr(s string) *string { return &s }

func TestCheckExpect_Applicability(t *testing.T) {
	failures := CheckExpect(&Outcome{Applicable: true, SQL: "x"}, &Expect{NotApplicable: true})
	require.Len(t, failures, 1)
	assert.Equal(t, AssertApplicable, failures[0].Type)
	assert.Equal(t, "not applicable", failures[0].Expected)
	assert.Equal(t, "translatable", failures[0].Actual)

	assert.Empty(t, CheckExpect(&Outcome{}, &Expect{NotApplicable: true}))

	failures = CheckExpect(&Outcome{}, &Expect{SQL: "x"})
	require.Len(t, failures, 1)
	assert.Equal(t, AssertApplicable, failures[0].Type)
}

func TestCheckExpect_Result(t *testing.T) {
	out := &Outcome{Applicable: true, Text: textPtr("3")}
	assert.Empty(t, CheckExpect(out, &Expect{Result: 3, HasResult: true}))
	assert.Empty(t, CheckExpect(out, &Expect{Result: "3", HasResult: true}))
	assert.Empty(t, CheckExpect(out, &Expect{Result: "ignored", HasResult: false}))

	failures := CheckExpect(out, &Expect{Result: 4, HasResult: true})
	require.Len(t, failures, 1)
	assert.Equal(t, "4", failures[0].Expected)
	assert.Equal(t, "3", failures[0].Actual)
}

func TestCheckExpect_EvaluationError(t *testing.T) {
	out := &Outcome{Applicable: true, SQL: "s", EvalError: "boom"}
	failures := CheckExpect(out, &Expect{Result: nil, HasResult: true})
	require.Len(t, failures, 1)
	assert.Equal(t, "evaluation error: boom", failures[0].Actual)
	assert.Contains(t, failures[0].Error(), "SQL: s")
}

func TestCheckExpect_Args(t *testing.T) {
	out := &Outcome{Applicable: true, Args: []any{"a", int64(2), true, nil}}
	assert.Empty(t, CheckExpect(out, &Expect{Args: []any{"a", 2, true, nil}}))

	failures := CheckExpect(out, &Expect{Args: []any{"a"}})
	require.Len(t, failures, 1)
	assert.Equal(t, AssertArgs, failures[0].Type)

	assert.Empty(t, CheckExpect(&Outcome{Applicable: true}, &Expect{Args: []any{}}))
}

func TestExpectedText(t *testing.T) {
	testCases := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"x", "x"},
		{true, "true"},
		{7, "7"},
		{int64(8), "8"},
		{[]any{"a", nil, "b c"}, `{"a",NULL,"b c"}`},
		{[]any{}, "{}"},
	}
	for _, tc := range testCases {
		got, err := ExpectedText(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ExpectedText(map[string]any{"a": "1"})
	assert.ErrorContains(t, err, "write dictionaries as text")
	_, err = ExpectedText([]any{1.5})
	assert.Error(t, err)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertSQL, Expected: "a", Actual: "b"}
	assert.Equal(t, "Assertion failed: sql\n  Expected: a\n  Actual: b\n", err.Error())
}
