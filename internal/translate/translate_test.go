package translate

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgdict/internal/catalog"
	"github.com/roach88/pgdict/internal/eval"
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
	"github.com/roach88/pgdict/internal/value"
)

var (
	reg     = typemap.Default()
	factory = sqlexpr.NewFactory(reg)
	marker  = &sqlexpr.Marker{}
	pairs   = typemap.PairsOf(typemap.KindString, typemap.KindString)
)

var stores = []string{typemap.StoreHstore, typemap.StoreJSON, typemap.StoreJSONB}

func newTranslator(t *testing.T, opts Options) *Translator {
	t.Helper()
	tr, err := New(reg, opts)
	require.NoError(t, err)
	return tr
}

// dictCol is a dict<string,string> column t.<name> stored as store.
func dictCol(name, store string) *sqlexpr.Column {
	return &sqlexpr.Column{Table: "t", Name: name, Type: typemap.StringDict, Mapping: reg.Find(store, typemap.StringDict)}
}

func textCol(name string) *sqlexpr.Column {
	return &sqlexpr.Column{Table: "t", Name: name, Type: typemap.String, Mapping: reg.FindByShape(typemap.String)}
}

func text(s string) sqlexpr.Expr {
	return factory.Constant(s, typemap.String, reg.FindByShape(typemap.String))
}

func list(items ...string) sqlexpr.Expr {
	return factory.Constant(items, typemap.StringList, reg.FindByShape(typemap.StringList))
}

// bind renders d as the column value a store of the given type holds.
func bind(store string, d value.Dict) any {
	switch store {
	case typemap.StoreHstore:
		return d
	default:
		s, err := value.FormatJSONText(value.DictMembers(d))
		if err != nil {
			panic(err)
		}
		return s
	}
}

func call(t *testing.T, tr *Translator, op catalog.Op, args ...sqlexpr.Expr) sqlexpr.Expr {
	t.Helper()
	e, ok := tr.TranslateCall(nil, catalog.Call(op), args, nil)
	require.True(t, ok, "%s not applicable", op)
	require.NotNil(t, e)
	return e
}

func evaluate(t *testing.T, e sqlexpr.Expr, cols map[string]any) any {
	t.Helper()
	v, err := eval.Evaluate(e, eval.Env{Columns: cols})
	require.NoError(t, err)
	return v
}

// asDict normalizes any dictionary runtime value to a Dict for comparison.
func asDict(t *testing.T, v any) value.Dict {
	t.Helper()
	switch val := v.(type) {
	case value.Dict:
		return val
	case value.Object:
		d, err := value.DictFromMembers(val.Members())
		require.NoError(t, err)
		return d
	case eval.JSONText:
		members, err := value.ParseObject(string(val))
		require.NoError(t, err)
		d, err := value.DictFromMembers(members)
		require.NoError(t, err)
		return d
	}
	t.Fatalf("not a dictionary value: %T", v)
	return nil
}

func TestNew_RequiresMappings(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorContains(t, err, "nil registry")

	partial, err := typemap.NewRegistry(
		typemap.NewMapping("text", typemap.String),
		typemap.NewMapping("text[]", typemap.StringList),
		typemap.NewMapping("boolean", typemap.Bool),
		typemap.NewMapping("integer", typemap.Int),
		typemap.NewMapping(typemap.StoreHstore, typemap.StringDict),
	)
	require.NoError(t, err)
	_, err = New(partial, Options{})
	assert.ErrorContains(t, err, "json")

	// The first string mapping decides the text type; json is not text.
	wrong, err := typemap.NewRegistry(append(
		[]*typemap.Mapping{typemap.NewMapping(typemap.StoreJSON, typemap.String)},
		typemap.DefaultMappings()...)...)
	require.NoError(t, err)
	_, err = New(wrong, Options{})
	assert.ErrorContains(t, err, "has encoding TextObject")

	tr := newTranslator(t, Options{RawTextEquality: true})
	assert.True(t, tr.Options().RawTextEquality)
}

func TestValueForKey_AllEncodings(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1", "b", "2")

	for _, store := range stores {
		t.Run(store, func(t *testing.T) {
			e, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.Indexer), []sqlexpr.Expr{text("b")}, nil)
			require.True(t, ok)
			assert.Equal(t, typemap.String, e.Shape())
			assert.Equal(t, "2", evaluate(t, e, map[string]any{"t.d": bind(store, d)}))

			absent, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.Indexer), []sqlexpr.Expr{text("z")}, nil)
			require.True(t, ok)
			assert.Nil(t, evaluate(t, absent, map[string]any{"t.d": bind(store, d)}))
		})
	}
}

func TestCoerce_IdentityReturnsSameNode(t *testing.T) {
	tr := newTranslator(t, Options{})
	testCases := map[catalog.Op]string{
		catalog.ToHstore: typemap.StoreHstore,
		catalog.ToJSON:   typemap.StoreJSON,
		catalog.ToJSONB:  typemap.StoreJSONB,
	}
	for op, store := range testCases {
		c := dictCol("d", store)
		assert.Same(t, c, call(t, tr, op, marker, c), op.String())
	}
}

func TestCoerce_LiteralsAreRetyped(t *testing.T) {
	tr := newTranslator(t, Options{})
	p := &sqlexpr.Parameter{Name: "p", Type: typemap.StringDict, Mapping: reg.Find(typemap.StoreJSON, typemap.StringDict)}

	e := call(t, tr, catalog.ToJSONB, marker, p)
	got, ok := e.(*sqlexpr.Parameter)
	require.True(t, ok, "expected a parameter, got %T", e)
	assert.Equal(t, "p", got.Name)
	assert.Equal(t, typemap.BinaryObject, got.TypeMapping().Encoding())

	c := dictCol("d", typemap.StoreJSON)
	e = call(t, tr, catalog.ToJSONB, marker, c)
	conv, ok := e.(*sqlexpr.Convert)
	require.True(t, ok, "expected a cast, got %T", e)
	assert.Same(t, c, conv.Operand)
}

func TestRoundTrip_HstoreThroughObjects(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1", "bb", "2", "c", "")
	d["n"] = nil

	for _, op := range []catalog.Op{catalog.ToJSON, catalog.ToJSONB} {
		t.Run(op.String(), func(t *testing.T) {
			there := call(t, tr, op, marker, dictCol("h", typemap.StoreHstore))
			back := call(t, tr, catalog.ToHstore, marker, there)
			assert.Equal(t, typemap.FlatStore, back.TypeMapping().Encoding())
			assert.Equal(t, d, evaluate(t, back, map[string]any{"t.h": d}))
		})
	}
}

func TestRoundTrip_ObjectsThroughHstore(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("k", "v", "key", "value")

	for _, store := range []string{typemap.StoreJSON, typemap.StoreJSONB} {
		t.Run(store, func(t *testing.T) {
			h := call(t, tr, catalog.ToHstore, marker, dictCol("d", store))
			assert.Equal(t, d, evaluate(t, h, map[string]any{"t.d": bind(store, d)}))

			back := call(t, tr, catalog.ToJSONB, marker, h)
			assert.Equal(t, value.ObjectFromDict(d), evaluate(t, back, map[string]any{"t.d": bind(store, d)}))
		})
	}
}

func TestDecompose_EmptyObject(t *testing.T) {
	tr := newTranslator(t, Options{})
	for _, store := range []string{typemap.StoreJSON, typemap.StoreJSONB} {
		t.Run(store, func(t *testing.T) {
			h := call(t, tr, catalog.ToHstore, marker, dictCol("d", store))
			assert.Equal(t, value.Dict{}, evaluate(t, h, map[string]any{"t.d": "{}"}))
			assert.Nil(t, evaluate(t, h, map[string]any{"t.d": nil}))

			vals, ok := tr.TranslateMember(dictCol("d", store), "Values", typemap.StringList, nil)
			require.True(t, ok)
			assert.Equal(t, []any{}, evaluate(t, vals, map[string]any{"t.d": "{}"}))
			assert.Nil(t, evaluate(t, vals, map[string]any{"t.d": nil}))

			has, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.ContainsValue), []sqlexpr.Expr{text("1")}, nil)
			require.True(t, ok)
			assert.Equal(t, false, evaluate(t, has, map[string]any{"t.d": "{}"}))
		})
	}
}

func TestRoundTrip_EmptyDictionary(t *testing.T) {
	tr := newTranslator(t, Options{})

	for _, op := range []catalog.Op{catalog.ToJSON, catalog.ToJSONB} {
		t.Run(op.String(), func(t *testing.T) {
			there := call(t, tr, op, marker, dictCol("h", typemap.StoreHstore))
			back := call(t, tr, catalog.ToHstore, marker, there)
			assert.Equal(t, value.Dict{}, evaluate(t, back, map[string]any{"t.h": value.Dict{}}))
		})
	}

	h := call(t, tr, catalog.ToHstore, marker, dictCol("b", typemap.StoreJSONB))
	back := call(t, tr, catalog.ToJSONB, marker, h)
	v := evaluate(t, back, map[string]any{"t.b": "{}"})
	require.NotNil(t, v)
	assert.Empty(t, asDict(t, v))
}

func TestCountAndIsEmpty(t *testing.T) {
	tr := newTranslator(t, Options{})
	values := []value.Dict{{}, value.DictOf("a", "1"), value.DictOf("a", "1", "b", "2", "c", "3")}

	for _, store := range stores {
		for _, d := range values {
			cols := map[string]any{"t.d": bind(store, d)}

			count, ok := tr.TranslateMember(dictCol("d", store), "Count", typemap.Int, nil)
			require.True(t, ok)
			empty, ok := tr.TranslateMember(dictCol("d", store), "IsEmpty", typemap.Bool, nil)
			require.True(t, ok)
			anyPairs, ok := tr.TranslateCall(nil, catalog.Call(catalog.Any, pairs), []sqlexpr.Expr{dictCol("d", store)}, nil)
			require.True(t, ok)

			n := evaluate(t, count, cols)
			assert.Equal(t, int64(len(d)), n, "%s %v", store, d)
			assert.Equal(t, n == int64(0), evaluate(t, empty, cols), "%s %v", store, d)
			assert.Equal(t, n != int64(0), evaluate(t, anyPairs, cols), "%s %v", store, d)
		}
	}
}

func TestKeysAndValues(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("bb", "2", "a", "1")

	for _, store := range stores {
		t.Run(store, func(t *testing.T) {
			cols := map[string]any{"t.d": bind(store, d)}
			keys, ok := tr.TranslateMember(dictCol("d", store), "Keys", typemap.StringList, nil)
			require.True(t, ok)
			vals, ok := tr.TranslateMember(dictCol("d", store), "Values", typemap.StringList, nil)
			require.True(t, ok)

			assert.Equal(t, []any{"a", "bb"}, evaluate(t, keys, cols))
			assert.Equal(t, []any{"1", "2"}, evaluate(t, vals, cols))

			// ToList over a translated key array is the array itself.
			same, ok := tr.TranslateCall(nil, catalog.Call(catalog.ToList), []sqlexpr.Expr{keys}, nil)
			require.True(t, ok)
			assert.Same(t, keys, same)
		})
	}
}

func TestContainment(t *testing.T) {
	tr := newTranslator(t, Options{})
	big := value.DictOf("a", "1", "b", "2")
	small := value.DictOf("a", "1")

	for _, ls := range stores {
		for _, rs := range stores {
			cols := map[string]any{"t.l": bind(ls, big), "t.r": bind(rs, small)}
			l, r := dictCol("l", ls), dictCol("r", rs)

			contains := call(t, tr, catalog.Contains, marker, l, r)
			containedBy := call(t, tr, catalog.ContainedBy, marker, r, l)
			reverse := call(t, tr, catalog.Contains, marker, r, l)

			assert.Equal(t, true, evaluate(t, contains, cols), "%s @> %s", ls, rs)
			assert.Equal(t, true, evaluate(t, containedBy, cols), "%s <@ %s", rs, ls)
			assert.Equal(t, false, evaluate(t, reverse, cols), "%s @> %s", rs, ls)
		}
	}
}

func TestContainment_DisjointNeitherWay(t *testing.T) {
	tr := newTranslator(t, Options{})
	a := value.DictOf("a", "1")
	b := value.DictOf("b", "2")

	for _, ls := range stores {
		for _, rs := range stores {
			cols := map[string]any{"t.l": bind(ls, a), "t.r": bind(rs, b)}
			l, r := dictCol("l", ls), dictCol("r", rs)

			assert.Equal(t, false, evaluate(t, call(t, tr, catalog.Contains, marker, l, r), cols), "%s @> %s", ls, rs)
			assert.Equal(t, false, evaluate(t, call(t, tr, catalog.Contains, marker, r, l), cols), "%s @> %s", rs, ls)
		}
	}
}

func TestConcat_RightWinsAndContainsBoth(t *testing.T) {
	tr := newTranslator(t, Options{})
	left := value.DictOf("a", "1", "b", "2")
	right := value.DictOf("b", "x", "c", "3")
	want := value.DictOf("a", "1", "b", "x", "c", "3")

	for _, ls := range stores {
		for _, rs := range stores {
			cols := map[string]any{"t.l": bind(ls, left), "t.r": bind(rs, right)}
			merged := call(t, tr, catalog.Concat, dictCol("l", ls), dictCol("r", rs))
			assert.Equal(t, want, asDict(t, evaluate(t, merged, cols)), "%s || %s", ls, rs)

			if ls == typemap.StoreHstore || rs == typemap.StoreHstore {
				assert.Equal(t, typemap.FlatStore, merged.TypeMapping().Encoding())
			} else {
				assert.Equal(t, typemap.BinaryObject, merged.TypeMapping().Encoding())
			}

			// The merge contains its right operand.
			contains := call(t, tr, catalog.Contains, marker, merged, dictCol("r", rs))
			assert.Equal(t, true, evaluate(t, contains, cols))
		}
	}
}

func TestConcat_EmptyRightKeepsLeft(t *testing.T) {
	tr := newTranslator(t, Options{})
	left := value.DictOf("a", "1")

	for _, ls := range stores {
		for _, rs := range stores {
			cols := map[string]any{"t.l": bind(ls, left), "t.r": bind(rs, value.Dict{})}
			merged := call(t, tr, catalog.Concat, dictCol("l", ls), dictCol("r", rs))
			v := evaluate(t, merged, cols)
			require.NotNil(t, v, "%s || %s", ls, rs)
			assert.Equal(t, left, asDict(t, v), "%s || %s", ls, rs)
		}
	}
}

func TestRemove(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1", "b", "2", "c", "3")

	for _, store := range stores {
		t.Run(store, func(t *testing.T) {
			cols := map[string]any{"t.d": bind(store, d)}

			one := call(t, tr, catalog.Remove, marker, dictCol("d", store), text("a"))
			assert.Equal(t, value.DictOf("b", "2", "c", "3"), asDict(t, evaluate(t, one, cols)))

			many := call(t, tr, catalog.Remove, marker, dictCol("d", store), list("a", "c"))
			assert.Equal(t, value.DictOf("b", "2"), asDict(t, evaluate(t, many, cols)))

			method, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.RemoveKey), []sqlexpr.Expr{text("b")}, nil)
			require.True(t, ok)
			assert.Equal(t, value.DictOf("a", "1", "c", "3"), asDict(t, evaluate(t, method, cols)))

			missing := call(t, tr, catalog.Remove, marker, dictCol("d", store), text("z"))
			assert.Equal(t, d, asDict(t, evaluate(t, missing, cols)))

			if store == typemap.StoreJSON {
				assert.Equal(t, typemap.BinaryObject, one.TypeMapping().Encoding())
			}
		})
	}
}

func TestExcept_KeepsLeftEncoding(t *testing.T) {
	tr := newTranslator(t, Options{})
	left := value.DictOf("a", "1", "b", "2", "c", "3")
	right := value.DictOf("a", "1", "b", "9")

	for _, ls := range stores {
		for _, rs := range stores {
			cols := map[string]any{"t.l": bind(ls, left), "t.r": bind(rs, right)}
			diff := call(t, tr, catalog.Except, dictCol("l", ls), dictCol("r", rs))
			assert.Equal(t, typemap.EncodingOf(ls), diff.TypeMapping().Encoding())
			assert.Equal(t, value.DictOf("b", "2", "c", "3"), asDict(t, evaluate(t, diff, cols)), "%s except %s", ls, rs)
		}
	}
}

func TestSequenceEqual(t *testing.T) {
	d := value.DictOf("a", "1", "b", "2")

	t.Run("mixed encodings", func(t *testing.T) {
		tr := newTranslator(t, Options{})
		for _, ls := range stores {
			for _, rs := range stores {
				cols := map[string]any{"t.l": bind(ls, d), "t.r": bind(rs, d)}
				eq := call(t, tr, catalog.SequenceEqual, dictCol("l", ls), dictCol("r", rs))
				assert.Equal(t, true, evaluate(t, eq, cols), "%s = %s", ls, rs)
			}
		}
	})

	reordered := map[string]any{
		"t.l": `{"a": "1", "b": "2"}`,
		"t.r": `{"b":"2","a":"1"}`,
	}

	t.Run("json compared as jsonb", func(t *testing.T) {
		tr := newTranslator(t, Options{})
		eq := call(t, tr, catalog.SequenceEqual, dictCol("l", typemap.StoreJSON), dictCol("r", typemap.StoreJSON))
		assert.Equal(t, true, evaluate(t, eq, reordered))
	})

	t.Run("json compared as text", func(t *testing.T) {
		tr := newTranslator(t, Options{RawTextEquality: true})
		eq := call(t, tr, catalog.SequenceEqual, dictCol("l", typemap.StoreJSON), dictCol("r", typemap.StoreJSON))
		assert.Equal(t, false, evaluate(t, eq, reordered))

		same := map[string]any{"t.l": `{"a":"1"}`, "t.r": `{"a":"1"}`}
		assert.Equal(t, true, evaluate(t, eq, same))
	})
}

func TestValuesForKeysAndSlice(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1", "b", "2")

	for _, store := range stores {
		t.Run(store, func(t *testing.T) {
			cols := map[string]any{"t.d": bind(store, d)}

			vals := call(t, tr, catalog.ValuesForKeys, marker, dictCol("d", store), list("b", "zz"))
			assert.Equal(t, []any{"2", nil}, evaluate(t, vals, cols))

			slice := call(t, tr, catalog.Slice, marker, dictCol("d", store), list("a", "zz"))
			assert.Equal(t, typemap.FlatStore, slice.TypeMapping().Encoding())
			assert.Equal(t, value.DictOf("a", "1"), evaluate(t, slice, cols))
		})
	}
}

func TestContainsKeyAndValue(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1")

	for _, store := range stores {
		cols := map[string]any{"t.d": bind(store, d)}
		for key, want := range map[string]bool{"a": true, "b": false} {
			e, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.ContainsKey), []sqlexpr.Expr{text(key)}, nil)
			require.True(t, ok)
			assert.Equal(t, want, evaluate(t, e, cols), "%s ? %s", store, key)
		}
		for val, want := range map[string]bool{"1": true, "a": false} {
			e, ok := tr.TranslateCall(dictCol("d", store), catalog.Call(catalog.ContainsValue), []sqlexpr.Expr{text(val)}, nil)
			require.True(t, ok)
			assert.Equal(t, want, evaluate(t, e, cols), "%s has value %s", store, val)
		}
	}
}

func TestKeyValueList(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("bb", "2", "a", "1")

	for _, store := range stores {
		e := call(t, tr, catalog.ToKeyValueList, marker, dictCol("d", store))
		assert.Equal(t, []any{"a", "1", "bb", "2"}, evaluate(t, e, map[string]any{"t.d": bind(store, d)}), store)

		// And back again.
		back := call(t, tr, catalog.FromKeyValueList, marker, e)
		assert.Equal(t, d, evaluate(t, back, map[string]any{"t.d": bind(store, d)}), store)
	}
}

func TestFromKeysAndValues(t *testing.T) {
	tr := newTranslator(t, Options{})
	e := call(t, tr, catalog.FromKeysAndValues, marker, list("a", "b"), list("1", "2"))
	assert.Equal(t, typemap.FlatStore, e.TypeMapping().Encoding())
	assert.Equal(t, value.DictOf("a", "1", "b", "2"), evaluate(t, e, nil))
}

func TestLooseJSON(t *testing.T) {
	tr := newTranslator(t, Options{})
	cols := map[string]any{"t.h": value.DictOf("n", "12", "b", "t", "s", "x")}

	e := call(t, tr, catalog.ToJSONBLoose, marker, dictCol("h", typemap.StoreHstore))
	assert.Equal(t, typemap.LooseDict, e.Shape())
	assert.Equal(t, `{"b": true, "n": 12, "s": "x"}`, eval.Format(evaluate(t, e, cols)))

	e = call(t, tr, catalog.ToJSONLoose, marker, dictCol("h", typemap.StoreHstore))
	assert.Equal(t, typemap.TextObject, e.TypeMapping().Encoding())
}

func TestToDictionary(t *testing.T) {
	tr := newTranslator(t, Options{})
	h := dictCol("h", typemap.StoreHstore)

	same := call(t, tr, catalog.ToDictionary, h)
	assert.Same(t, h, same)

	imm := call(t, tr, catalog.ToImmutableDictionary, h)
	assert.Equal(t, typemap.ImmutableStringDict, imm.Shape())
	assert.Equal(t, typemap.FlatStore, imm.TypeMapping().Encoding())
	cols := map[string]any{"t.h": value.DictOf("a", "1")}
	assert.Equal(t, value.DictOf("a", "1"), evaluate(t, imm, cols))
}

func TestNotApplicable(t *testing.T) {
	tr := newTranslator(t, Options{})
	h := dictCol("h", typemap.StoreHstore)
	j := dictCol("j", typemap.StoreJSON)
	plain := textCol("s")

	testCases := []struct {
		name     string
		instance sqlexpr.Expr
		sig      catalog.Signature
		args     []sqlexpr.Expr
	}{
		{"unknown operation", nil, catalog.Call(catalog.OpUnknown), []sqlexpr.Expr{marker, h}},
		{"missing marker", nil, catalog.Call(catalog.ToHstore), []sqlexpr.Expr{h}},
		{"marker only", nil, catalog.Call(catalog.ToHstore), []sqlexpr.Expr{marker}},
		{"too many operands", nil, catalog.Call(catalog.ToHstore), []sqlexpr.Expr{marker, h, h}},
		{"too few operands", nil, catalog.Call(catalog.Contains), []sqlexpr.Expr{marker, h}},
		{"nil operand", nil, catalog.Call(catalog.Contains), []sqlexpr.Expr{marker, h, nil}},
		{"no dictionary operand", nil, catalog.Call(catalog.ToJSONB), []sqlexpr.Expr{marker, plain}},
		{"keys not a list", nil, catalog.Call(catalog.ValuesForKeys), []sqlexpr.Expr{marker, h, text("a")}},
		{"slice keys not a list", nil, catalog.Call(catalog.Slice), []sqlexpr.Expr{marker, h, plain}},
		{"remove non-key", nil, catalog.Call(catalog.Remove), []sqlexpr.Expr{marker, h, h}},
		{"contains with plain operand", nil, catalog.Call(catalog.Contains), []sqlexpr.Expr{marker, h, plain}},
		{"constructor over dictionary", nil, catalog.Call(catalog.FromKeyValueList), []sqlexpr.Expr{marker, h}},
		{"key value list of int", nil, catalog.Call(catalog.ToKeyValueList, typemap.Int), []sqlexpr.Expr{marker, h}},
		{"loose json from json", nil, catalog.Call(catalog.ToJSONBLoose), []sqlexpr.Expr{marker, j}},
		{"any without pairs", nil, catalog.Call(catalog.Any, typemap.StringList), []sqlexpr.Expr{h}},
		{"count without pairs", nil, catalog.Call(catalog.CountPairs), []sqlexpr.Expr{h}},
		{"to list over a column", nil, catalog.Call(catalog.ToList), []sqlexpr.Expr{h}},
		{"to dictionary from json", nil, catalog.Call(catalog.ToDictionary).Returning(typemap.ImmutableStringDict), []sqlexpr.Expr{j}},
		{"sequence op with marker", nil, catalog.Call(catalog.Concat), []sqlexpr.Expr{marker, h, h}},
		{"method without instance", nil, catalog.Call(catalog.ContainsKey), []sqlexpr.Expr{text("a")}},
		{"method on plain instance", plain, catalog.Call(catalog.ContainsKey), []sqlexpr.Expr{text("a")}},
		{"method with two args", h, catalog.Call(catalog.Indexer), []sqlexpr.Expr{text("a"), text("b")}},
		{"extension op as method", h, catalog.Call(catalog.Remove), []sqlexpr.Expr{text("a")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := tr.TranslateCall(tc.instance, tc.sig, tc.args, nil)
			assert.False(t, ok)
			assert.Nil(t, e)
		})
	}
}

func TestNotApplicable_Members(t *testing.T) {
	tr := newTranslator(t, Options{})

	for _, tc := range []struct {
		name     string
		instance sqlexpr.Expr
		member   string
	}{
		{"unknown member", dictCol("h", typemap.StoreHstore), "Length"},
		{"case sensitive", dictCol("h", typemap.StoreHstore), "keys"},
		{"plain instance", textCol("s"), "Keys"},
		{"nil instance", nil, "Count"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := tr.TranslateMember(tc.instance, tc.member, typemap.Shape{}, nil)
			assert.False(t, ok)
			assert.Nil(t, e)
		})
	}
}

func TestTranslateCall_LogsReason(t *testing.T) {
	tr := newTranslator(t, Options{})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, ok := tr.TranslateCall(nil, catalog.Call(catalog.ToHstore), []sqlexpr.Expr{dictCol("h", typemap.StoreHstore)}, logger)
	require.False(t, ok)
	assert.Contains(t, buf.String(), "dictionary call not applicable")
	assert.Contains(t, buf.String(), reasonMarker)

	buf.Reset()
	_, ok = tr.TranslateCall(nil, catalog.Call(catalog.ToJSONB), []sqlexpr.Expr{marker, dictCol("h", typemap.StoreHstore)}, logger)
	require.True(t, ok)
	assert.Contains(t, buf.String(), "translated dictionary call")
	assert.Contains(t, buf.String(), "op=fn.ToJsonb")
}

func TestTranslatedTreesValidate(t *testing.T) {
	tr := newTranslator(t, Options{})
	for _, store := range stores {
		for _, member := range catalog.Members() {
			e, ok := tr.TranslateMember(dictCol("d", store), member.String(), typemap.Shape{}, nil)
			require.True(t, ok)
			res := sqlexpr.Validate(e)
			assert.True(t, res.Valid, "%s.%s: %v", store, member, res.Problems)
		}
		e := call(t, tr, catalog.ToKeyValueList, marker, dictCol("d", store))
		res := sqlexpr.Validate(e)
		assert.True(t, res.Valid, "%s key value list: %v", store, res.Problems)
	}
}

func TestTranslator_ConcurrentUse(t *testing.T) {
	tr := newTranslator(t, Options{})
	d := value.DictOf("a", "1", "b", "2")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := stores[i%len(stores)]
			for n := 0; n < 50; n++ {
				e, ok := tr.TranslateCall(nil, catalog.Call(catalog.Concat), []sqlexpr.Expr{dictCol("l", store), dictCol("r", typemap.StoreJSONB)}, nil)
				if !assert.True(t, ok) {
					return
				}
				v, err := eval.Evaluate(e, eval.Env{Columns: map[string]any{"t.l": bind(store, d), "t.r": bind(typemap.StoreJSONB, d)}})
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, d, asDict(t, v))
			}
		}(i)
	}
	wg.Wait()
}
