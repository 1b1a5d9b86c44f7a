package sqlexpr

import "fmt"

// Operator is a binary SQL operator.
type Operator uint8

const (
	OpEqual Operator = iota + 1
	OpNotEqual

	// OpContains is @>: left contains every pair of right.
	OpContains
	// OpContainedBy is <@: every pair of left is in right.
	OpContainedBy

	// OpValueForKey is hstore -> text (or text[] for many keys).
	OpValueForKey
	// OpValueForKeyAsText is json(b) ->> text.
	OpValueForKeyAsText

	// OpContainsKey is ?: the key exists.
	OpContainsKey

	// OpSubtract is -: remove keys (text, text[]) or matching pairs (hstore).
	OpSubtract

	// OpConcat is ||: merge, the right operand wins on conflicting keys.
	OpConcat
)

var operatorSymbols = map[Operator]string{
	OpEqual:             "=",
	OpNotEqual:          "<>",
	OpContains:          "@>",
	OpContainedBy:       "<@",
	OpValueForKey:       "->",
	OpValueForKeyAsText: "->>",
	OpContainsKey:       "?",
	OpSubtract:          "-",
	OpConcat:            "||",
}

// Symbol returns the PostgreSQL spelling of the operator.
func (op Operator) Symbol() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsComparison reports whether the operator yields a boolean.
func (op Operator) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpContains, OpContainedBy, OpContainsKey:
		return true
	}
	return false
}

func (op Operator) String() string {
	return op.Symbol()
}
