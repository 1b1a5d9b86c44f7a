// Package harness runs translation scenarios.
//
// A scenario names one dictionary operation, binds its operands, and states
// what should come out: whether the operation is translatable at all, the
// SQL it renders to, and the value that SQL evaluates to.
//
// # Scenario Format
//
//	name: jsonb_remove_key
//	description: "Remove on json goes through jsonb"
//	op: fn.Remove
//	operands:
//	  - column: j
//	    store: json
//	    value: {a: "1", b: "2"}
//	  - param: k
//	    shape: string
//	    value: a
//	expect:
//	  sql: '"t"."j"::jsonb - $1::text'
//	  result: '{"b": "2"}'
//
// Methods and members take an instance:
//
//	member: Keys
//	instance: {column: h, store: hstore, value: {a: "1"}}
//
// An operand is a column (of table "t"), a parameter, a constant (neither
// column nor param), or the translation of a nested request under call:.
// Shapes default to dict<string,string>; the store type defaults to the
// registry's mapping for the shape. The call marker of fn.* operations is
// supplied by the harness.
//
// # Expectations
//
//	expect:
//	  not_applicable: true   # the translator must decline
//	  sql: ...               # exact rendered SQL
//	  args: [...]            # placeholder values, $1 first
//	  result: ...            # evaluated value as PostgreSQL text
//
// result accepts a string (compared with the text output), a boolean, an
// integer, null, or a list of those for arrays.
package harness
