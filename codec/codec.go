// Package codec implements the reversible codec registry and transformer
// stack: named codecs with declared source/target types, composed into an
// ordered stack whose identity (the tuple of codec ids) is persisted for
// on-disk compatibility checking (invariant I1).
package codec

import (
	"errors"
	"fmt"
)

// Type is a value type a codec declares as its source or target. Unlike
// kv.Type (physical storage types), Type here also spans in-memory shapes
// (String, Any) that never touch a backend directly.
type Type int

const (
	// Blob is the raw-bytes type: the identity type every stack terminates at.
	Blob Type = iota
	// String is a UTF-8 text value in memory (Go string).
	String
	// Any is an arbitrary Go value (map[string]any, struct, etc.) — the
	// terminal type at the user-facing end of json/msgpack/cbor/bson/pon
	// stacks.
	Any
)

func (t Type) String() string {
	switch t {
	case Blob:
		return "blob"
	case String:
		return "string"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("codec.Type(%d)", int(t))
	}
}

// ErrTypeMismatch is returned by Forward/Reverse when the value handed in
// does not match the codec's declared source/target type. Go's static typing
// can't express the source's dynamic per-codec type guarantees at compile
// time once values cross the any boundary at stack edges, so every concrete
// codec defensively asserts and returns this sentinel on mismatch.
var ErrTypeMismatch = errors.New("codec: value does not match declared type")

// Codec is a named reversible map between two declared types. SourceType is
// always the type nearer the user-facing value, TargetType the type nearer
// raw storage (ultimately Blob). Forward converts SourceType -> TargetType
// (the write path); Reverse is its inverse (the read path).
type Codec interface {
	ID() string
	SourceType() Type
	TargetType() Type
	Forward(v any) (any, error)
	Reverse(v any) (any, error)
}

// baseCodec is an embeddable helper giving concrete codecs their ID/Source/
// Target accessors for free.
type baseCodec struct {
	id         string
	source, tg Type
}

func (b baseCodec) ID() string         { return b.id }
func (b baseCodec) SourceType() Type   { return b.source }
func (b baseCodec) TargetType() Type   { return b.tg }
