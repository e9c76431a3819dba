// Package kv declares the backend-neutral key/value store abstraction that
// the cache facade is built on: named tables, transactions, iteration, bulk
// value transformation and maintenance hooks. Concrete engines live in
// sibling packages (kv/sqlitekv, kv/mdbxkv).
package kv

import "fmt"

// Type is a physical value type a backend may store natively.
type Type int

const (
	// Bytes is an opaque byte string.
	Bytes Type = iota
	// Str is a UTF-8 text value.
	Str
	// Int is a 64-bit integer value.
	Int
)

func (t Type) String() string {
	switch t {
	case Bytes:
		return "bytes"
	case Str:
		return "str"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("kv.Type(%d)", int(t))
	}
}

// KeyType is the declared key type for a cache's data table. It is either a
// native physical Type, or the tagged "any" variant, in which case keys are
// routed through the codec stack to bytes before reaching the backend (see
// invariant I3 and I6 in the design notes).
type KeyType struct {
	Native Type
	Any    bool
}

// NativeKeyType builds a KeyType wrapping a concrete physical type.
func NativeKeyType(t Type) KeyType { return KeyType{Native: t} }

// AnyKeyType is the "any" declared key type: keys are opaque values encoded
// through the codec stack, physically stored as Bytes.
var AnyKeyType = KeyType{Any: true}

func (k KeyType) String() string {
	if k.Any {
		return "any"
	}
	return k.Native.String()
}

// Equal reports whether two declared key types are the same for the purpose
// of the attach-path compatibility check (I3/P7). Declared "any" is
// considered equal to stored Bytes — the one defined asymmetry (§9): the
// reverse (declared Bytes, stored "any") is not accepted.
func (k KeyType) Equal(stored KeyType) bool {
	if k == stored {
		return true
	}
	if k.Any && !stored.Any && stored.Native == Bytes {
		return true
	}
	return false
}

// SizeStat is the page/wasted-page accounting a backend reports for its data
// table, used to derive an automatic dictionary size in optimizeCompression.
type SizeStat struct {
	// Total is the total size in bytes occupied by the table. The
	// memory-mapped backend reports no SizeStat at all (ErrSizeUnknown).
	Total int64
	// Wasted is the number of bytes that could be reclaimed by a vacuum.
	Wasted int64
	// Known is false when the backend cannot compute a size stat at all; a
	// caller should fall back to its own default in that case.
	Known bool
}
