package codec

import (
	"bytes"
	"reflect"

	ugorji "github.com/ugorji/go/codec"
)

var msgpackHandle ugorji.MsgpackHandle

// msgpackCodec converts between an arbitrary Go value and its MessagePack
// encoding. Unlike json, msgpack is itself a binary format, so it targets
// Blob directly rather than routing through String.
type msgpackCodec struct{ baseCodec }

// MsgPack is the msgpack value<->bytes codec, registered under id "msgpack".
var MsgPack Codec = msgpackCodec{baseCodec{id: "msgpack", source: Any, tg: Blob}}

// Forward encodes v to msgpack bytes (write path).
func (msgpackCodec) Forward(v any) (any, error) {
	var buf bytes.Buffer
	enc := ugorji.NewEncoder(&buf, &msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reverse decodes msgpack bytes back into a Go value (read path).
func (msgpackCodec) Reverse(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrTypeMismatch
	}
	var out any
	dec := ugorji.NewDecoderBytes(b, &msgpackHandle)
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func init() {
	// Decode schema-less values in the same shape the json codec produces:
	// string-keyed maps, signed integers, strings rather than raw bytes.
	msgpackHandle.MapType = reflect.TypeOf(map[string]any(nil))
	msgpackHandle.SignedInteger = true
	msgpackHandle.RawToString = true
	Default.Register(MsgPack)
}
