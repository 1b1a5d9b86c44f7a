package typemap

// Encoding identifies the on-disk representation of a key-value value.
//
// The zero value is EncodingUnknown: plain scalars, arrays and unmapped
// expressions all classify as unknown.
type Encoding uint8

const (
	// EncodingUnknown is any value that is not one of the three key-value encodings.
	EncodingUnknown Encoding = iota

	// FlatStore is hstore: an order-independent map of text keys to nullable text values.
	FlatStore

	// TextObject is json: a textual object, only decomposable into key/value rows.
	TextObject

	// BinaryObject is jsonb: a parsed object with equality and containment operators.
	BinaryObject
)

// Store types of the three encodings.
const (
	StoreHstore = "hstore"
	StoreJSON   = "json"
	StoreJSONB  = "jsonb"
)

// EncodingOf returns the encoding for a PostgreSQL store type.
func EncodingOf(storeType string) Encoding {
	switch storeType {
	case StoreHstore:
		return FlatStore
	case StoreJSON:
		return TextObject
	case StoreJSONB:
		return BinaryObject
	default:
		return EncodingUnknown
	}
}

// Known reports whether e is one of the three key-value encodings.
func (e Encoding) Known() bool {
	return e != EncodingUnknown
}

// StoreType returns the PostgreSQL store type of the encoding.
// Returns "" for EncodingUnknown.
func (e Encoding) StoreType() string {
	switch e {
	case FlatStore:
		return StoreHstore
	case TextObject:
		return StoreJSON
	case BinaryObject:
		return StoreJSONB
	default:
		return ""
	}
}

func (e Encoding) String() string {
	switch e {
	case FlatStore:
		return "FlatStore"
	case TextObject:
		return "TextObject"
	case BinaryObject:
		return "BinaryObject"
	default:
		return "Unknown"
	}
}
