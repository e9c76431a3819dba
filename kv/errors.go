package kv

import "errors"

// ErrTableNotMapped is returned when a table is used before it has been
// created (the memory-mapped backend has no key-type record for it).
var ErrTableNotMapped = errors.New("kv: table not mapped")

// ErrNoSuchFunction is returned by ApplyToValues when the named function was
// never registered via Backend.CreateFunction.
var ErrNoSuchFunction = errors.New("kv: no such registered function")

// ErrSizeUnknown is returned by Backend.DataSize when the backend cannot
// compute a size stat (see the memory-mapped backend's design notes).
var ErrSizeUnknown = errors.New("kv: data size is unknown for this backend")
