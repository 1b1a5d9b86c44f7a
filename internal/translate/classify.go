package translate

import (
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// classify returns the encoding of e, or EncodingUnknown for nil
// expressions, unmapped expressions and non key-value mappings.
func classify(e sqlexpr.Expr) typemap.Encoding {
	if e == nil {
		return typemap.EncodingUnknown
	}
	return e.TypeMapping().Encoding()
}

func isDictionaryStore(e sqlexpr.Expr) bool {
	return classify(e).Known()
}

func anyDictionaryStore(es ...sqlexpr.Expr) bool {
	for _, e := range es {
		if isDictionaryStore(e) {
			return true
		}
	}
	return false
}

func isMarker(e sqlexpr.Expr) bool {
	_, ok := e.(*sqlexpr.Marker)
	return ok
}

// isKeyOperand reports whether e can be subtracted from a dictionary as a
// single key or a key array.
func isKeyOperand(e sqlexpr.Expr) bool {
	if e == nil {
		return false
	}
	s := e.Shape()
	return s == typemap.String || s.IsStringList()
}

func isStringList(e sqlexpr.Expr) bool {
	return e != nil && e.Shape().IsStringList()
}

func encodings(es ...sqlexpr.Expr) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = classify(e).String()
	}
	return out
}
