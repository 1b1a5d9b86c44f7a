// Package catalog enumerates the declared dictionary operations.
//
// The catalog is a closed set of operation tags with arity and shape
// metadata. It performs no translation: the query pipeline recognizes a call
// as one of these operations and hands the resulting Signature to the
// translator, which switches on the tag.
//
// Extension operations are static helpers whose first argument is a
// sqlexpr.Marker. They exist only as patterns: evaluated outside a query
// they have no meaning, and callers must surface an error of their own.
package catalog

import (
	"fmt"
	"sort"

	"github.com/roach88/pgdict/internal/typemap"
)

// Op identifies a declared operation.
type Op uint8

const (
	OpUnknown Op = iota

	// Extension operations (leading marker argument).
	ValuesForKeys
	Contains
	ContainedBy
	Remove
	Slice
	ToKeyValueList
	FromKeyValueList
	FromKeysAndValues
	ToJSON
	ToJSONB
	ToJSONLoose
	ToJSONBLoose
	ToHstore

	// Sequence operations over pair sequences.
	Any
	CountPairs
	ToList
	ToDictionary
	ToImmutableDictionary
	Concat
	Except
	SequenceEqual

	// Instance methods of dictionary values.
	Indexer
	RemoveKey
	ContainsKey
	ContainsValue

	opCount
)

// Kind groups operations by how they are invoked.
type Kind uint8

const (
	// KindExtension is a static helper called with a leading marker.
	KindExtension Kind = iota + 1
	// KindSequence is a generic sequence operation; every argument is data.
	KindSequence
	// KindMethod is bound to a dictionary instance.
	KindMethod
)

var kindPrefixes = map[Kind]string{
	KindExtension: "fn",
	KindSequence:  "seq",
	KindMethod:    "dict",
}

func (k Kind) String() string {
	if p, ok := kindPrefixes[k]; ok {
		return p
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// OpSpec is the declared shape of an operation.
type OpSpec struct {
	Name string
	Kind Kind

	// Arity is the number of data operands, excluding the marker of
	// extension operations and the instance of methods.
	Arity int

	// Params and Returns describe operand and result shapes for display.
	Params  []string
	Returns string

	// Constructor marks operations whose operands are plain string arrays
	// rather than dictionary values.
	Constructor bool
}

var specs = [opCount]OpSpec{
	ValuesForKeys:     {Name: "ValuesForKeys", Kind: KindExtension, Arity: 2, Params: []string{"pairs<string,string>", "list<string>"}, Returns: "list<string>"},
	Contains:          {Name: "Contains", Kind: KindExtension, Arity: 2, Params: []string{"pairs<K,V>", "pairs<K,V>"}, Returns: "bool"},
	ContainedBy:       {Name: "ContainedBy", Kind: KindExtension, Arity: 2, Params: []string{"pairs<K,V>", "pairs<K,V>"}, Returns: "bool"},
	Remove:            {Name: "Remove", Kind: KindExtension, Arity: 2, Params: []string{"T: pairs<K,V>", "K"}, Returns: "T"},
	Slice:             {Name: "Slice", Kind: KindExtension, Arity: 2, Params: []string{"T: pairs<string,string>", "list<string>"}, Returns: "T"},
	ToKeyValueList:    {Name: "ToKeyValueList", Kind: KindExtension, Arity: 1, Params: []string{"pairs<T,T>"}, Returns: "list<T>"},
	FromKeyValueList:  {Name: "DictionaryFromKeyValueList", Kind: KindExtension, Arity: 1, Params: []string{"list<string>"}, Returns: "dict<string,string>", Constructor: true},
	FromKeysAndValues: {Name: "DictionaryFromKeysAndValues", Kind: KindExtension, Arity: 2, Params: []string{"list<string>", "list<string>"}, Returns: "dict<string,string>", Constructor: true},
	ToJSON:            {Name: "ToJson", Kind: KindExtension, Arity: 1, Params: []string{"pairs<K,V>"}, Returns: "dict<K,V>"},
	ToJSONB:           {Name: "ToJsonb", Kind: KindExtension, Arity: 1, Params: []string{"pairs<K,V>"}, Returns: "dict<K,V>"},
	ToJSONLoose:       {Name: "ToJsonLoose", Kind: KindExtension, Arity: 1, Params: []string{"pairs<string,string>"}, Returns: "dict<string,any>"},
	ToJSONBLoose:      {Name: "ToJsonbLoose", Kind: KindExtension, Arity: 1, Params: []string{"pairs<string,string>"}, Returns: "dict<string,any>"},
	ToHstore:          {Name: "ToHstore", Kind: KindExtension, Arity: 1, Params: []string{"pairs<string,string>"}, Returns: "dict<string,string>"},

	Any:                   {Name: "Any", Kind: KindSequence, Arity: 1, Params: []string{"seq<T>"}, Returns: "bool"},
	CountPairs:            {Name: "Count", Kind: KindSequence, Arity: 1, Params: []string{"seq<T>"}, Returns: "int"},
	ToList:                {Name: "ToList", Kind: KindSequence, Arity: 1, Params: []string{"seq<T>"}, Returns: "list<T>"},
	ToDictionary:          {Name: "ToDictionary", Kind: KindSequence, Arity: 1, Params: []string{"pairs<K,V>"}, Returns: "dict<K,V>"},
	ToImmutableDictionary: {Name: "ToImmutableDictionary", Kind: KindSequence, Arity: 1, Params: []string{"pairs<K,V>"}, Returns: "immutable_dict<K,V>"},
	Concat:                {Name: "Concat", Kind: KindSequence, Arity: 2, Params: []string{"seq<T>", "seq<T>"}, Returns: "seq<T>"},
	Except:                {Name: "Except", Kind: KindSequence, Arity: 2, Params: []string{"seq<T>", "seq<T>"}, Returns: "seq<T>"},
	SequenceEqual:         {Name: "SequenceEqual", Kind: KindSequence, Arity: 2, Params: []string{"seq<T>", "seq<T>"}, Returns: "bool"},

	Indexer:       {Name: "Item", Kind: KindMethod, Arity: 1, Params: []string{"K"}, Returns: "V"},
	RemoveKey:     {Name: "Remove", Kind: KindMethod, Arity: 1, Params: []string{"K"}, Returns: "immutable_dict<K,V>"},
	ContainsKey:   {Name: "ContainsKey", Kind: KindMethod, Arity: 1, Params: []string{"K"}, Returns: "bool"},
	ContainsValue: {Name: "ContainsValue", Kind: KindMethod, Arity: 1, Params: []string{"V"}, Returns: "bool"},
}

// Spec returns the declared shape of op. The zero OpSpec is returned for
// unknown operations.
func (op Op) Spec() OpSpec {
	if op == OpUnknown || op >= opCount {
		return OpSpec{}
	}
	return specs[op]
}

// Valid reports whether op is a declared operation.
func (op Op) Valid() bool {
	return op > OpUnknown && op < opCount
}

// QualifiedName returns the kind-qualified name, e.g. "fn.Remove" or
// "dict.Remove". Qualified names are unique across the catalog.
func (op Op) QualifiedName() string {
	s := op.Spec()
	if s.Name == "" {
		return "unknown"
	}
	return s.Kind.String() + "." + s.Name
}

func (op Op) String() string {
	return op.QualifiedName()
}

// Ops returns every declared operation in declaration order.
func Ops() []Op {
	out := make([]Op, 0, opCount-1)
	for op := OpUnknown + 1; op < opCount; op++ {
		out = append(out, op)
	}
	return out
}

var byQualifiedName = func() map[string]Op {
	m := make(map[string]Op, opCount)
	for _, op := range Ops() {
		name := op.QualifiedName()
		if _, dup := m[name]; dup {
			panic("catalog: duplicate qualified name " + name)
		}
		m[name] = op
	}
	return m
}()

// ParseOp resolves a qualified operation name.
func ParseOp(name string) (Op, bool) {
	op, ok := byQualifiedName[name]
	return op, ok
}

// QualifiedNames returns every qualified operation name, sorted.
func QualifiedNames() []string {
	names := make([]string, 0, len(byQualifiedName))
	for n := range byQualifiedName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Signature is a recognized call: the operation plus the generic type
// arguments and result shape the pipeline resolved for it.
//
// TypeArgs holds the element shape for sequence operations (e.g.
// pairs<string,string> for Any over a dictionary) and the key/value shape
// for ToKeyValueList.
type Signature struct {
	Op       Op
	TypeArgs []typemap.Shape
	Return   typemap.Shape
}

// Call builds a Signature without a declared result shape.
func Call(op Op, typeArgs ...typemap.Shape) Signature {
	return Signature{Op: op, TypeArgs: typeArgs}
}

// Returning returns a copy of s with the given result shape.
func (s Signature) Returning(shape typemap.Shape) Signature {
	s.Return = shape
	return s
}

// TypeArg returns the i-th type argument, or the zero Shape.
func (s Signature) TypeArg(i int) typemap.Shape {
	if i < 0 || i >= len(s.TypeArgs) {
		return typemap.Shape{}
	}
	return s.TypeArgs[i]
}
