// Package value holds the runtime representations of key-value data in the
// three store encodings, plus their textual formats.
//
//   - hstore values are Dict: text keys to nullable text values.
//   - jsonb values are Object: parsed members, last duplicate wins.
//   - json values are kept as text; ParseObject decomposes them in order,
//     duplicates included.
//
// Keys of hstore and jsonb values are kept in storage order: shorter keys
// first, then bytewise. This is the order akeys, avals and
// jsonb_object_keys return them in.
//
// This package imports nothing internal.
package value

import (
	"sort"
)

// Dict is an hstore value. A nil value pointer is SQL NULL.
type Dict map[string]*string

// Str returns a pointer to s, for building Dict literals.
func Str(s string) *string {
	return &s
}

// DictOf builds a Dict from alternating key, value strings.
// Panics on an odd argument count; intended for tests and fixtures.
func DictOf(kv ...string) Dict {
	if len(kv)%2 != 0 {
		panic("value.DictOf: odd argument count")
	}
	d := make(Dict, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		d[kv[i]] = Str(kv[i+1])
	}
	return d
}

// Keys returns the keys in storage order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	SortStorage(keys)
	return keys
}

// Clone returns a shallow copy. Value pointers are shared; Dict values are
// never mutated through them.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Equal reports whether both dicts hold the same keys with the same values.
func (d Dict) Equal(o Dict) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		ov, ok := o[k]
		if !ok || !equalNullable(v, ov) {
			return false
		}
	}
	return true
}

// Contains reports whether every pair of sub is present in d (hstore @>).
func (d Dict) Contains(sub Dict) bool {
	for k, v := range sub {
		dv, ok := d[k]
		if !ok || !equalNullable(dv, v) {
			return false
		}
	}
	return true
}

func equalNullable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CompareStorage orders keys the way hstore and jsonb store them: by byte
// length, then bytewise.
func CompareStorage(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortStorage sorts keys in storage order, in place.
func SortStorage(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return CompareStorage(keys[i], keys[j]) < 0
	})
}
