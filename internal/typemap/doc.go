// Package typemap describes how dictionary-like values are stored.
//
// A Mapping pairs a PostgreSQL store type ("hstore", "json", "jsonb",
// "text[]", ...) with the Shape of the value it holds. Mappings for the three
// key-value encodings carry a static Encoding tag computed once, when the
// mapping is constructed, so consumers classify operands without inspecting
// store type strings or value types at translation time.
//
// ENCODINGS:
//
//	FlatStore     hstore   text keys to nullable text values, native operators
//	TextObject    json     textual object, queryable through decomposition
//	BinaryObject  jsonb    parsed object, equality and containment operators
//
// A Registry is built once and never mutated afterwards; it is safe to share
// between goroutines.
package typemap
