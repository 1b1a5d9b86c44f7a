package translate

import (
	"log/slog"

	"github.com/roach88/pgdict/internal/catalog"
	"github.com/roach88/pgdict/internal/sqlexpr"
	"github.com/roach88/pgdict/internal/typemap"
)

// TranslateCall translates a recognized call.
//
// instance is the receiver of dictionary methods (catalog.KindMethod) and
// nil otherwise. args holds the call arguments; extension operations carry
// a leading *sqlexpr.Marker that is not counted as data.
//
// Returns (nil, false) when the call is not applicable. logger receives
// Debug diagnostics; nil means slog.Default().
func (t *Translator) TranslateCall(instance sqlexpr.Expr, sig catalog.Signature, args []sqlexpr.Expr, logger *slog.Logger) (sqlexpr.Expr, bool) {
	logger = loggerOrDefault(logger)
	if !sig.Op.Valid() {
		logger.Debug("dictionary call not applicable", "op", sig.Op, "reason", "unknown operation")
		return nil, false
	}

	var (
		result sqlexpr.Expr
		ok     bool
		reason string
	)
	if instance != nil {
		result, ok, reason = t.dispatchMethod(instance, sig, args)
	} else {
		result, ok, reason = t.dispatchStatic(sig, args)
	}

	if !ok {
		logger.Debug("dictionary call not applicable",
			"op", sig.Op,
			"operands", encodings(append([]sqlexpr.Expr{instance}, args...)...),
			"reason", reason)
		return nil, false
	}
	logger.Debug("translated dictionary call", "op", sig.Op, "result", result.TypeMapping().String())
	return result, true
}

// TranslateMember translates a property read (Keys, Values, Count,
// IsEmpty) on a dictionary instance. returnShape is the shape the pipeline
// expects; it is not needed to build any of the members.
func (t *Translator) TranslateMember(instance sqlexpr.Expr, member string, returnShape typemap.Shape, logger *slog.Logger) (sqlexpr.Expr, bool) {
	logger = loggerOrDefault(logger)
	result, ok, reason := t.dispatchMember(instance, catalog.ParseMember(member))
	if !ok {
		logger.Debug("dictionary member not applicable",
			"member", member,
			"operand", classify(instance).String(),
			"reason", reason)
		return nil, false
	}
	logger.Debug("translated dictionary member", "member", member, "return", returnShape.String())
	return result, true
}

const (
	reasonArity     = "operand count does not match operation"
	reasonEncoding  = "no operand has a key-value encoding"
	reasonMarker    = "missing call marker"
	reasonKind      = "operation kind does not match call form"
	reasonShape     = "operand shape does not fit operation"
	reasonUnhandled = "encoding combination not supported"
)

func (t *Translator) dispatchStatic(sig catalog.Signature, args []sqlexpr.Expr) (sqlexpr.Expr, bool, string) {
	spec := sig.Op.Spec()
	data := args
	switch spec.Kind {
	case catalog.KindExtension:
		if len(args) == 0 || !isMarker(args[0]) {
			return nil, false, reasonMarker
		}
		data = args[1:]
	case catalog.KindSequence:
	default:
		return nil, false, reasonKind
	}

	if len(data) == 0 || len(data) != spec.Arity {
		return nil, false, reasonArity
	}
	for _, d := range data {
		if d == nil || isMarker(d) {
			return nil, false, reasonArity
		}
	}

	// Constructors take plain string arrays; everything else needs at least
	// one key-value operand.
	if spec.Constructor {
		result, ok := t.fromArrays(data...)
		return verdict(result, ok, reasonShape)
	}
	// ToList sees the arrays Keys and Values produce, not dictionaries.
	if sig.Op == catalog.ToList {
		return verdict(data[0], isTranslatedArray(data[0]), reasonShape)
	}
	if !anyDictionaryStore(data...) {
		return nil, false, reasonEncoding
	}

	switch len(data) {
	case 1:
		return t.unary(sig, data[0])
	case 2:
		return t.binary(sig, data[0], data[1])
	}
	return nil, false, reasonArity
}

func (t *Translator) unary(sig catalog.Signature, x sqlexpr.Expr) (sqlexpr.Expr, bool, string) {
	var (
		result sqlexpr.Expr
		ok     bool
	)
	switch sig.Op {
	case catalog.ToHstore:
		result, ok = t.coerce(x, typemap.FlatStore)
	case catalog.ToJSON:
		result, ok = t.coerce(x, typemap.TextObject)
	case catalog.ToJSONB:
		result, ok = t.coerce(x, typemap.BinaryObject)
	case catalog.ToJSONLoose:
		result, ok = t.looseJSON(x, typemap.TextObject)
	case catalog.ToJSONBLoose:
		result, ok = t.looseJSON(x, typemap.BinaryObject)
	case catalog.ToKeyValueList:
		if elem := sig.TypeArg(0); elem.Kind != typemap.KindUnknown && elem != typemap.String {
			return nil, false, reasonShape
		}
		result, ok = t.keyValueList(x)
	case catalog.Any:
		if !sig.TypeArg(0).IsPairs() {
			return nil, false, reasonShape
		}
		result, ok = t.emptiness(sqlexpr.OpNotEqual, x)
	case catalog.CountPairs:
		if !sig.TypeArg(0).IsPairs() {
			return nil, false, reasonShape
		}
		result, ok = t.count(x)
	case catalog.ToDictionary:
		result, ok = t.toDictionary(x, targetShape(sig, typemap.StringDict))
	case catalog.ToImmutableDictionary:
		result, ok = t.toDictionary(x, targetShape(sig, typemap.ImmutableStringDict))
	default:
		return nil, false, reasonArity
	}
	return verdict(result, ok, reasonUnhandled)
}

func (t *Translator) binary(sig catalog.Signature, a, b sqlexpr.Expr) (sqlexpr.Expr, bool, string) {
	var (
		result sqlexpr.Expr
		ok     bool
	)
	switch sig.Op {
	case catalog.ValuesForKeys:
		result, ok = t.valuesForKeys(a, b)
	case catalog.Slice:
		result, ok = t.slice(a, b)
	case catalog.Contains:
		result, ok = t.containment(sqlexpr.OpContains, a, b)
	case catalog.ContainedBy:
		result, ok = t.containment(sqlexpr.OpContainedBy, a, b)
	case catalog.Remove:
		result, ok = t.removeKeys(a, b)
	case catalog.Concat:
		result, ok = t.concat(a, b)
	case catalog.Except:
		result, ok = t.except(a, b)
	case catalog.SequenceEqual:
		result, ok = t.equal(a, b)
	default:
		return nil, false, reasonArity
	}
	return verdict(result, ok, reasonUnhandled)
}

func (t *Translator) dispatchMethod(instance sqlexpr.Expr, sig catalog.Signature, args []sqlexpr.Expr) (sqlexpr.Expr, bool, string) {
	if sig.Op.Spec().Kind != catalog.KindMethod {
		return nil, false, reasonKind
	}
	if !instance.Shape().IsDictionary() {
		return nil, false, reasonShape
	}
	if len(args) != 1 || args[0] == nil {
		return nil, false, reasonArity
	}
	if !isDictionaryStore(instance) {
		return nil, false, reasonEncoding
	}

	var (
		result sqlexpr.Expr
		ok     bool
	)
	arg := args[0]
	switch sig.Op {
	case catalog.Indexer:
		result, ok = t.valueForKey(instance, arg)
	case catalog.RemoveKey:
		result, ok = t.removeKeys(instance, arg)
	case catalog.ContainsKey:
		result, ok = t.containsKey(instance, arg)
	case catalog.ContainsValue:
		result, ok = t.containsValue(instance, arg)
	default:
		return nil, false, reasonKind
	}
	return verdict(result, ok, reasonUnhandled)
}

func (t *Translator) dispatchMember(instance sqlexpr.Expr, member catalog.Member) (sqlexpr.Expr, bool, string) {
	if instance == nil || !instance.Shape().IsDictionary() {
		return nil, false, reasonShape
	}
	if !isDictionaryStore(instance) {
		return nil, false, reasonEncoding
	}

	var (
		result sqlexpr.Expr
		ok     bool
	)
	switch member {
	case catalog.Keys:
		result, ok = t.keys(instance)
	case catalog.Values:
		result, ok = t.values(instance)
	case catalog.Count:
		result, ok = t.count(instance)
	case catalog.IsEmpty:
		result, ok = t.emptiness(sqlexpr.OpEqual, instance)
	default:
		return nil, false, "unknown member"
	}
	return verdict(result, ok, reasonUnhandled)
}

// targetShape is the declared result shape when it is a dictionary,
// otherwise def.
func targetShape(sig catalog.Signature, def typemap.Shape) typemap.Shape {
	if sig.Return.IsDictionary() {
		return sig.Return
	}
	return def
}

func verdict(result sqlexpr.Expr, ok bool, reason string) (sqlexpr.Expr, bool, string) {
	if !ok {
		return nil, false, reason
	}
	return result, true, ""
}
