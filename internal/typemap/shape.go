package typemap

import (
	"fmt"
	"strings"
)

// Kind is the outer kind of a value shape.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindBool
	// KindAny is a loosely typed value: text, number or boolean, as produced
	// by the numeric/boolean-preserving hstore conversions.
	KindAny
	KindList
	KindDict
	KindImmutableDict
	// KindPairs is a sequence of key/value pairs. Dictionaries are pair
	// sequences too; see Shape.IsPairs.
	KindPairs
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindString:        "string",
	KindInt:           "int",
	KindBool:          "bool",
	KindAny:           "any",
	KindList:          "list",
	KindDict:          "dict",
	KindImmutableDict: "immutable_dict",
	KindPairs:         "pairs",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// scalar reports whether k can appear as a key or element kind.
func (k Kind) scalar() bool {
	switch k {
	case KindString, KindInt, KindBool, KindAny:
		return true
	}
	return false
}

// Shape is the value type of an expression, independent of how it is stored.
//
// Shape is comparable and used as a map key by Registry. Key is only set for
// dictionaries and pair sequences; Elem is the list element kind or the
// dictionary/pair value kind.
type Shape struct {
	Kind Kind
	Key  Kind
	Elem Kind
}

// Well-known shapes.
var (
	String              = Shape{Kind: KindString}
	Int                 = Shape{Kind: KindInt}
	Bool                = Shape{Kind: KindBool}
	StringList          = ListOf(KindString)
	StringDict          = DictOf(KindString, KindString)
	ImmutableStringDict = Shape{Kind: KindImmutableDict, Key: KindString, Elem: KindString}
	LooseDict           = DictOf(KindString, KindAny)
)

// ListOf returns the shape of a list of elem.
func ListOf(elem Kind) Shape {
	return Shape{Kind: KindList, Elem: elem}
}

// DictOf returns the shape of a mutable dictionary.
func DictOf(key, value Kind) Shape {
	return Shape{Kind: KindDict, Key: key, Elem: value}
}

// PairsOf returns the shape of a key/value pair sequence.
func PairsOf(key, value Kind) Shape {
	return Shape{Kind: KindPairs, Key: key, Elem: value}
}

// IsDictionary reports whether s is a (mutable or immutable) dictionary.
func (s Shape) IsDictionary() bool {
	return s.Kind == KindDict || s.Kind == KindImmutableDict
}

// IsPairs reports whether s can be enumerated as key/value pairs.
func (s Shape) IsPairs() bool {
	return s.Kind == KindPairs || s.IsDictionary()
}

// IsStringList reports whether s is a list of strings.
func (s Shape) IsStringList() bool {
	return s == StringList
}

// KeyShape returns the scalar shape of the dictionary or pair keys.
func (s Shape) KeyShape() Shape {
	return Shape{Kind: s.Key}
}

// ElemShape returns the scalar shape of list elements or dictionary values.
func (s Shape) ElemShape() Shape {
	return Shape{Kind: s.Elem}
}

func (s Shape) String() string {
	switch s.Kind {
	case KindList:
		return fmt.Sprintf("list<%s>", s.Elem)
	case KindDict, KindImmutableDict, KindPairs:
		return fmt.Sprintf("%s<%s,%s>", s.Kind, s.Key, s.Elem)
	default:
		return s.Kind.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseShape parses the textual form produced by Shape.String.
//
// Examples: "string", "list<string>", "dict<string,string>",
// "immutable_dict<string,string>", "pairs<string,int>", "dict<string,any>".
func ParseShape(s string) (Shape, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '<')
	if open < 0 {
		k, err := parseKind(s)
		if err != nil {
			return Shape{}, err
		}
		if !k.scalar() {
			return Shape{}, fmt.Errorf("shape %q: %s needs type arguments", s, k)
		}
		return Shape{Kind: k}, nil
	}
	if !strings.HasSuffix(s, ">") {
		return Shape{}, fmt.Errorf("shape %q: missing closing '>'", s)
	}

	outer, err := parseKind(s[:open])
	if err != nil {
		return Shape{}, err
	}
	args := strings.Split(s[open+1:len(s)-1], ",")
	kinds := make([]Kind, len(args))
	for i, a := range args {
		k, err := parseKind(strings.TrimSpace(a))
		if err != nil {
			return Shape{}, fmt.Errorf("shape %q: %w", s, err)
		}
		if !k.scalar() {
			return Shape{}, fmt.Errorf("shape %q: nested %s not supported", s, k)
		}
		kinds[i] = k
	}

	switch outer {
	case KindList:
		if len(kinds) != 1 {
			return Shape{}, fmt.Errorf("shape %q: list takes one type argument", s)
		}
		return ListOf(kinds[0]), nil
	case KindDict, KindImmutableDict, KindPairs:
		if len(kinds) != 2 {
			return Shape{}, fmt.Errorf("shape %q: %s takes two type arguments", s, outer)
		}
		return Shape{Kind: outer, Key: kinds[0], Elem: kinds[1]}, nil
	default:
		return Shape{}, fmt.Errorf("shape %q: %s takes no type arguments", s, outer)
	}
}

func parseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != KindUnknown {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown kind %q", name)
}
