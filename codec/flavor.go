package codec

// Flavor is a preconfigured cache shape: a codec stack plus the compressor
// id new caches of this flavor default to. Flavors are plain values built by
// wrapping a base stack with one outer codec — the value-based replacement
// for the source's per-class metaclass machinery (each subclass cache wraps
// its own serializer around its parent's stack).
type Flavor struct {
	Name              string
	Stack             Stack
	DefaultCompressor string
}

var (
	// BlobFlavor stores raw bytes with no transformation.
	BlobFlavor = Flavor{Name: "blob", Stack: NewStack(), DefaultCompressor: "none"}

	// StringFlavor stores UTF-8 text, transformed to bytes by utf8.
	StringFlavor = Flavor{Name: "string", Stack: NewStack(UTF8), DefaultCompressor: "none"}

	// JSONFlavor stores arbitrary JSON-able values: json wraps string's utf8,
	// so a put goes value -> json text -> utf8 bytes.
	JSONFlavor = Flavor{Name: "json", Stack: StringFlavor.Stack.Wrap(JSON), DefaultCompressor: "zstd"}

	// PONFlavor stores arbitrary gob-encodable values as base64 text, wrapping
	// string's utf8 the same way json does.
	PONFlavor = Flavor{Name: "pon", Stack: StringFlavor.Stack.Wrap(PON), DefaultCompressor: "zstd"}

	// MsgpackFlavor stores arbitrary values via MessagePack, a binary format
	// that targets Blob directly without an intermediate string stage.
	MsgpackFlavor = Flavor{Name: "msgpack", Stack: BlobFlavor.Stack.Wrap(MsgPack), DefaultCompressor: "zstd"}

	// CBORFlavor stores arbitrary values via CBOR, likewise binary and direct
	// to Blob.
	CBORFlavor = Flavor{Name: "cbor", Stack: BlobFlavor.Stack.Wrap(CBOR), DefaultCompressor: "zstd"}

	// BSONFlavor stores arbitrary values via BSON, likewise binary and direct
	// to Blob.
	BSONFlavor = Flavor{Name: "bson", Stack: BlobFlavor.Stack.Wrap(BSON), DefaultCompressor: "zstd"}
)

// Flavors indexes the predefined flavors by name, for looking one up from a
// flavor name string.
var Flavors = map[string]Flavor{
	BlobFlavor.Name:    BlobFlavor,
	StringFlavor.Name:  StringFlavor,
	JSONFlavor.Name:    JSONFlavor,
	PONFlavor.Name:     PONFlavor,
	MsgpackFlavor.Name: MsgpackFlavor,
	CBORFlavor.Name:    CBORFlavor,
	BSONFlavor.Name:    BSONFlavor,
}
