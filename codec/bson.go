package codec

import "go.mongodb.org/mongo-driver/bson"

// bsonEnvelope wraps an arbitrary value so it can round-trip through BSON,
// which only encodes documents, not bare scalars.
type bsonEnvelope struct {
	V any `bson:"v"`
}

// bsonCodec converts between an arbitrary Go value and its BSON encoding.
// Not part of the teacher's own dependency graph; added from the wider pack
// (go.mongodb.org/mongo-driver/bson) since no teacher codec covers BSON.
// Binary format, so it targets Blob directly like msgpack/cbor.
type bsonCodec struct{ baseCodec }

// BSON is the bson value<->bytes codec, registered under id "bson".
var BSON Codec = bsonCodec{baseCodec{id: "bson", source: Any, tg: Blob}}

// Forward encodes v to BSON bytes (write path).
func (bsonCodec) Forward(v any) (any, error) {
	b, err := bson.Marshal(bsonEnvelope{V: v})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Reverse decodes BSON bytes back into a Go value (read path).
func (bsonCodec) Reverse(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrTypeMismatch
	}
	var env bsonEnvelope
	if err := bson.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	return env.V, nil
}

func init() {
	Default.Register(BSON)
}
