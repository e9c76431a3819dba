package kv

// Cursor iterates over keys, values or key/value pairs of a Table. Its shape
// follows the Next/Key/Value/Err/Close idiom used throughout the pack's
// bolt/mdbx/leveldb-backed iterators (see the rawdb Table wrapper this
// module's kv.PrefixTable is grounded on): call Next until it returns false,
// check Err, always Close.
type Cursor interface {
	// Next advances the cursor and reports whether a record is available.
	Next() bool
	// Key returns the current record's key. Valid only after Next returns true.
	// Zero-length/nil when iterating Values-only.
	Key() []byte
	// Value returns the current record's value. Valid only after Next returns
	// true. Zero-length/nil when iterating Keys-only.
	Value() []byte
	// Err returns the first error encountered during iteration, if any.
	Err() error
	// Close releases resources held by the cursor. Idempotent.
	Close()
}

// sliceCursor is a trivial in-memory Cursor implementation, used by tests and
// by backends where materializing results upfront is simpler than a live
// engine cursor (e.g. an empty table).
type sliceCursor struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

// NewSliceCursor builds a Cursor over already-materialized keys/values. If
// keys is nil, Key() returns nil throughout; likewise for values.
func NewSliceCursor(keys, values [][]byte) Cursor {
	return &sliceCursor{keys: keys, values: values, pos: -1}
}

func (c *sliceCursor) Next() bool {
	c.pos++
	n := len(c.keys)
	if len(c.values) > n {
		n = len(c.values)
	}
	return c.pos < n
}

func (c *sliceCursor) Key() []byte {
	if c.pos < 0 || c.pos >= len(c.keys) {
		return nil
	}
	return c.keys[c.pos]
}

func (c *sliceCursor) Value() []byte {
	if c.pos < 0 || c.pos >= len(c.values) {
		return nil
	}
	return c.values[c.pos]
}

func (c *sliceCursor) Err() error { return nil }
func (c *sliceCursor) Close()     {}

var _ Cursor = (*sliceCursor)(nil)
