package typemap

import (
	"fmt"
)

// Mapping describes how a value of some Shape is stored in PostgreSQL.
//
// Mappings are immutable after construction. The encoding tag is derived
// from the store type once, in NewMapping.
type Mapping struct {
	storeType string
	shape     Shape
	encoding  Encoding
}

// NewMapping creates a mapping for a store type and value shape.
func NewMapping(storeType string, shape Shape) *Mapping {
	return &Mapping{
		storeType: storeType,
		shape:     shape,
		encoding:  EncodingOf(storeType),
	}
}

// StoreType returns the PostgreSQL type name, e.g. "hstore" or "text[]".
func (m *Mapping) StoreType() string {
	return m.storeType
}

// Shape returns the value shape the mapping was registered for.
func (m *Mapping) Shape() Shape {
	return m.shape
}

// Encoding returns the key-value encoding, or EncodingUnknown for scalars and arrays.
func (m *Mapping) Encoding() Encoding {
	if m == nil {
		return EncodingUnknown
	}
	return m.encoding
}

func (m *Mapping) String() string {
	if m == nil {
		return "<unmapped>"
	}
	return fmt.Sprintf("%s(%s)", m.storeType, m.shape)
}

// Registry resolves mappings by shape or by store type.
//
// The first mapping registered for a shape becomes that shape's default; the
// first mapping registered for a store type is returned by FindByStoreType.
// A Registry is never mutated after NewRegistry returns.
type Registry struct {
	mappings []*Mapping
	byShape  map[Shape]*Mapping
	byStore  map[string]*Mapping
	exact    map[exactKey]*Mapping
}

type exactKey struct {
	store string
	shape Shape
}

// NewRegistry builds a registry from mappings in priority order.
// Returns an error for nil mappings, empty store types or duplicate
// (store type, shape) pairs.
func NewRegistry(mappings ...*Mapping) (*Registry, error) {
	r := &Registry{
		byShape: make(map[Shape]*Mapping),
		byStore: make(map[string]*Mapping),
		exact:   make(map[exactKey]*Mapping),
	}
	for i, m := range mappings {
		if m == nil {
			return nil, fmt.Errorf("mapping %d is nil", i)
		}
		if m.storeType == "" {
			return nil, fmt.Errorf("mapping %d: empty store type", i)
		}
		key := exactKey{store: m.storeType, shape: m.shape}
		if _, dup := r.exact[key]; dup {
			return nil, fmt.Errorf("mapping %d: duplicate %s", i, m)
		}
		r.exact[key] = m
		if _, ok := r.byShape[m.shape]; !ok {
			r.byShape[m.shape] = m
		}
		if _, ok := r.byStore[m.storeType]; !ok {
			r.byStore[m.storeType] = m
		}
		r.mappings = append(r.mappings, m)
	}
	return r, nil
}

// DefaultMappings returns the built-in mappings in priority order.
// Dictionaries default to hstore; json and jsonb are reachable by store type.
func DefaultMappings() []*Mapping {
	return []*Mapping{
		NewMapping("text", String),
		NewMapping("integer", Int),
		NewMapping("boolean", Bool),
		NewMapping("text[]", StringList),
		NewMapping("integer[]", ListOf(KindInt)),
		NewMapping("boolean[]", ListOf(KindBool)),
		NewMapping(StoreHstore, StringDict),
		NewMapping(StoreHstore, ImmutableStringDict),
		NewMapping(StoreJSON, StringDict),
		NewMapping(StoreJSON, LooseDict),
		NewMapping(StoreJSONB, StringDict),
		NewMapping(StoreJSONB, LooseDict),
	}
}

// Default returns a registry of DefaultMappings.
func Default() *Registry {
	r, err := NewRegistry(DefaultMappings()...)
	if err != nil {
		// DefaultMappings is static; a failure here is a programming error.
		panic(fmt.Sprintf("typemap: default registry: %v", err))
	}
	return r
}

// FindByShape returns the default mapping for a shape, or nil.
func (r *Registry) FindByShape(s Shape) *Mapping {
	return r.byShape[s]
}

// FindByStoreType returns the first mapping registered for a store type, or nil.
func (r *Registry) FindByStoreType(storeType string) *Mapping {
	return r.byStore[storeType]
}

// Find returns the mapping registered for exactly (storeType, shape),
// falling back to FindByStoreType.
func (r *Registry) Find(storeType string, s Shape) *Mapping {
	if m, ok := r.exact[exactKey{store: storeType, shape: s}]; ok {
		return m
	}
	return r.FindByStoreType(storeType)
}

// Mappings returns all mappings in registration order.
func (r *Registry) Mappings() []*Mapping {
	out := make([]*Mapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}
