package kv

import "context"

// Backend abstracts a named-key-value store supporting multiple tables and
// transactions. A Cache exclusively owns its Backend for the lifetime of one
// Open/Close scope.
type Backend interface {
	// Open acquires the underlying engine handle. Must be paired with Close,
	// including on error paths (scoped resource acquisition, see §5 of the
	// design notes).
	Open(ctx context.Context) error
	// Close releases the engine handle, guaranteeing any pending mutations are
	// committed first. Close is best-effort from the caller's perspective: see
	// cache package for how failures here are downgraded to warnings.
	Close() error

	// Commit flushes pending mutations durably.
	Commit() error
	// BeginTx opens an explicit transaction; mutations until the matching
	// Commit form a single atomic group. On SQLite this issues an explicit
	// "begin;" (statements otherwise autocommit); on backends with shared
	// write transactions (the memory-mapped backend) this ref-counts.
	BeginTx() error

	// Vacuum reclaims space freed by deletions/overwrites. May be a no-op.
	Vacuum() error
	// Optimize runs engine-specific maintenance. May be a no-op.
	Optimize() error

	// CreateFunction registers an in-backend single-argument byte function,
	// callable by name from Table.ApplyToValues.
	CreateFunction(name string, fn func([]byte) []byte) error

	// Tables returns the logical->physical table name mapping for this
	// backend instance. Mutating the returned map has no effect; use MapTable.
	Tables() TableDirectory
	// MapTable binds a logical name to a physical table name and returns the
	// Table handle. It does not create the physical table; Table.Create does.
	MapTable(logical, physical string) (Table, error)

	// NativeValueTypes is the set of value types this backend stores without
	// an external codec (invariant I6).
	NativeValueTypes() []Type
	// NativeKeyTypes is the set of key types this backend stores without an
	// external codec.
	NativeKeyTypes() []Type

	// DataSize reports the size/wasted-space stat for the "data" table, used
	// to auto-derive a dictionary size in Cache.OptimizeCompression.
	DataSize() (SizeStat, error)
}
