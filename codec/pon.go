package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
)

// ponCodec converts between an arbitrary Go value and a text encoding,
// standing in for the source's legacy "PON" (plain object notation) format.
// No third-party Go library implements that legacy text notation, and
// nothing else in the pack offers a closer substitute, so this is the one
// codec built on the standard library rather than an ecosystem dependency
// (see DESIGN.md). encoding/gob supplies the reversible value<->bytes
// encoding; base64 keeps the result representable as String, matching the
// source's PONCache extending StringCache rather than BlobCache.
type ponCodec struct{ baseCodec }

// PON is the pon value<->string codec, registered under id "pon".
var PON Codec = ponCodec{baseCodec{id: "pon", source: Any, tg: String}}

// Forward encodes v to a base64 text blob (write path).
func (ponCodec) Forward(v any) (any, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Reverse decodes a base64 text blob back into a Go value (read path).
func (ponCodec) Reverse(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	var out any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func init() {
	// gob only carries interface-typed values whose concrete type is
	// registered; the generic container shapes are not registered by default.
	gob.Register([]any(nil))
	gob.Register(map[string]any(nil))
	Default.Register(PON)
}
