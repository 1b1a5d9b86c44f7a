// Package sqlexpr is the query-expression tree consumed by the translator and
// by SQL generation.
//
// Expr is a sealed interface: only types in this package implement it. The
// marker method pattern keeps the node set closed so that the translator,
// the SQL generator and the evaluator can use exhaustive type switches.
//
// NODES:
//
//	Marker          placeholder receiver of catalog extension calls (no data)
//	Column          t.c
//	Constant        literal value, rendered inline
//	Parameter       bound value, rendered as $n
//	Function        name(args...)
//	Binary          left <op> right
//	Any             item = ANY(array)
//	Convert         operand::type
//	NewArray        ARRAY[e1, e2, ...]
//	ScalarSubquery  (SELECT projection FROM table functions)
//
// Every node reports its value Shape and, when known, its TypeMapping. The
// mapping carries the static encoding tag used to classify dictionary
// operands.
//
// IMMUTABILITY:
//
// Nodes are never modified after construction. Code that needs a node with a
// different mapping builds a new node (see Factory.ApplyTypeMapping). Trees
// can therefore be shared between goroutines and between translations.
package sqlexpr
