package cache

import "github.com/pkg/errors"

// Sentinel errors surfaced by Cache. Wrapped kv/compress errors keep their
// original cause reachable via errors.Cause / errors.Unwrap.
var (
	// ErrBadBase is returned when base is of a kind New cannot resolve to a
	// backend (not a recognised path suffix, and not a pre-opened handle).
	ErrBadBase = errors.New("cache: unrecognised base argument")

	// ErrIncompatibleCodecs is returned on the attach path when the
	// persisted serializers id list differs from the requested flavor's
	// codec stack id (invariant I1).
	ErrIncompatibleCodecs = errors.New("cache: persisted codec stack does not match requested flavor")

	// ErrIncompatibleKeyType is returned on the attach path when the
	// persisted key type differs from the declared one, outside the
	// declared-any/stored-bytes exception.
	ErrIncompatibleKeyType = errors.New("cache: persisted key type does not match declared key type")

	// ErrUnsupportedOperation is returned when a capability unsupported by
	// the active compressor is invoked, e.g. OptimizeCompression on a
	// non-dictionary compressor.
	ErrUnsupportedOperation = errors.New("cache: unsupported operation for active compressor")

	// ErrInternalInvariant is the value the recompress function panics with
	// if it is ever invoked outside an active dictionary swap (its
	// func([]byte) []byte signature has no error return).
	ErrInternalInvariant = errors.New("cache: recompress invoked outside a dictionary swap")
)
