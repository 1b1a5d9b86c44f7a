// Package translate maps dictionary operations onto PostgreSQL expressions
// for values stored as hstore, json or jsonb.
//
// The Translator is offered every recognized call and member access of a
// query. It either returns a new expression tree or reports "not
// applicable" with (nil, false), in which case the caller tries another
// strategy. Not applicable is the only negative outcome: the Translator
// never returns an error for a well-formed request.
//
// Operands are classified by the encoding tag of their type mapping.
// Operands in different encodings are reconciled by the coercion layer:
//
//	hstore   <- jsonb, json   decomposition subquery over json(b)_each_text
//	jsonb   <-> json          cast (mapping swap for constants/parameters)
//	hstore   -> json, jsonb   hstore_to_json / hstore_to_jsonb
//
// A Translator holds only read-only state and is safe for concurrent use.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// Options configures translation behaviour that changes query results.
type Options struct {
	// RawTextEquality compares two json operands by their text instead of
	// casting both to jsonb. Text comparison is faster but treats objects
	// that differ only in key order or whitespace as unequal.
	RawTextEquality bool
}

// Translator translates dictionary operations. Create with New.
type Translator struct {
	f    *sqlexpr.Factory
	opts Options

	text     *typemap.Mapping
	textList *typemap.Mapping
	integer  *typemap.Mapping

	hstore          *typemap.Mapping
	hstoreImmutable *typemap.Mapping
	json            *typemap.Mapping
	jsonLoose       *typemap.Mapping
	jsonb           *typemap.Mapping
	jsonbLoose      *typemap.Mapping
}

// New creates a Translator over reg. It returns an error when reg lacks a
// mapping the builders need.
func New(reg *typemap.Registry, opts Options) (*Translator, error) {
	if reg == nil {
		return nil, fmt.Errorf("translator: nil registry")
	}
	t := &Translator{
		f:               sqlexpr.NewFactory(reg),
		opts:            opts,
		text:            reg.FindByShape(typemap.String),
		textList:        reg.FindByShape(typemap.StringList),
		integer:         reg.FindByShape(typemap.Int),
		hstore:          reg.Find(typemap.StoreHstore, typemap.StringDict),
		hstoreImmutable: reg.Find(typemap.StoreHstore, typemap.ImmutableStringDict),
		json:            reg.Find(typemap.StoreJSON, typemap.StringDict),
		jsonLoose:       reg.Find(typemap.StoreJSON, typemap.LooseDict),
		jsonb:           reg.Find(typemap.StoreJSONB, typemap.StringDict),
		jsonbLoose:      reg.Find(typemap.StoreJSONB, typemap.LooseDict),
	}

	required := []struct {
		name string
		m    *typemap.Mapping
		enc  typemap.Encoding
	}{
		{"string", t.text, typemap.EncodingUnknown},
		{"list<string>", t.textList, typemap.EncodingUnknown},
		{"bool", reg.FindByShape(typemap.Bool), typemap.EncodingUnknown},
		{"int", t.integer, typemap.EncodingUnknown},
		{"hstore", t.hstore, typemap.FlatStore},
		{"hstore (immutable)", t.hstoreImmutable, typemap.FlatStore},
		{"json", t.json, typemap.TextObject},
		{"json (loose)", t.jsonLoose, typemap.TextObject},
		{"jsonb", t.jsonb, typemap.BinaryObject},
		{"jsonb (loose)", t.jsonbLoose, typemap.BinaryObject},
	}
	for _, r := range required {
		if r.m == nil {
			return nil, fmt.Errorf("translator: registry has no %s mapping", r.name)
		}
		if r.m.Encoding() != r.enc {
			return nil, fmt.Errorf("translator: %s mapping %s has encoding %s, want %s", r.name, r.m, r.m.Encoding(), r.enc)
		}
	}
	return t, nil
}

// Options returns the options the Translator was created with.
func (t *Translator) Options() Options {
	return t.opts
}

// mappingFor returns the dictionary mapping of enc for a value of shape.
func (t *Translator) mappingFor(enc typemap.Encoding, shape typemap.Shape) *typemap.Mapping {
	loose := shape.Elem == typemap.KindAny
	switch enc {
	case typemap.FlatStore:
		if shape.Kind == typemap.KindImmutableDict {
			return t.hstoreImmutable
		}
		return t.hstore
	case typemap.TextObject:
		if loose {
			return t.jsonLoose
		}
		return t.json
	case typemap.BinaryObject:
		if loose {
			return t.jsonbLoose
		}
		return t.jsonb
	}
	return nil
}

// hstoreShape is the shape of an hstore value derived from shape: values
// are always text, immutability is kept.
func hstoreShape(shape typemap.Shape) typemap.Shape {
	if shape.Kind == typemap.KindImmutableDict {
		return typemap.ImmutableStringDict
	}
	return typemap.StringDict
}

// dictShape returns shape when it is a dictionary, else dict<string,string>.
func dictShape(shape typemap.Shape) typemap.Shape {
	if shape.IsDictionary() {
		return shape
	}
	return typemap.StringDict
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
