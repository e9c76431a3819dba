package codec

import (
	"bytes"
	"reflect"

	ugorji "github.com/ugorji/go/codec"
)

var cborHandle ugorji.CborHandle

// cborCodec converts between an arbitrary Go value and its CBOR encoding.
// Shares the ugorji/go/codec dependency with msgpack, just with a different
// Handle; CBOR is also a binary format and targets Blob directly.
type cborCodec struct{ baseCodec }

// CBOR is the cbor value<->bytes codec, registered under id "cbor".
var CBOR Codec = cborCodec{baseCodec{id: "cbor", source: Any, tg: Blob}}

// Forward encodes v to CBOR bytes (write path).
func (cborCodec) Forward(v any) (any, error) {
	var buf bytes.Buffer
	enc := ugorji.NewEncoder(&buf, &cborHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reverse decodes CBOR bytes back into a Go value (read path).
func (cborCodec) Reverse(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrTypeMismatch
	}
	var out any
	dec := ugorji.NewDecoderBytes(b, &cborHandle)
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func init() {
	// Decode schema-less values as string-keyed maps and signed integers,
	// the same shape the json codec produces.
	cborHandle.MapType = reflect.TypeOf(map[string]any(nil))
	cborHandle.SignedInteger = true
	Default.Register(CBOR)
}
