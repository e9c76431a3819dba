package kv

// Table is a named keyed byte store within a Backend. A cache uses exactly
// two: "data" and "metadata" (see TableDirectory).
type Table interface {
	// Exists reports whether the table has already been created on disk.
	Exists() (bool, error)
	// Create creates the table with the given physical key/value types. The
	// cache calls it on the initialization path, and again from Cache.Empty
	// after Drop.
	Create(keyType, valType Type) error
	// Len returns the number of rows currently in the table.
	Len() (int64, error)

	// Get returns the raw stored bytes for key, and whether the key existed.
	Get(key []byte) ([]byte, bool, error)
	// Put stores val under key, overwriting any existing value.
	Put(key, val []byte) error
	// Delete removes key if present. Idempotent: deleting an absent key is
	// not an error.
	Delete(key []byte) error
	// Drop removes the table entirely (used by Cache.Empty to reset "data").
	Drop() error

	// Keys iterates over all keys in the table. Values() returns nil from the
	// cursor's Value().
	Keys() Cursor
	// Values iterates over all values in the table. Key() returns nil from the
	// cursor's Key().
	Values() Cursor
	// Items iterates over all key/value pairs in the table.
	Items() Cursor

	// ApplyToValues rewrites every value in place by applying the named
	// function (previously registered on the owning Backend via
	// CreateFunction), reporting progress per record.
	ApplyToValues(fnName string, progress ProgressReporter) error

	// KeyType reports the table's declared physical key type, as persisted at
	// Create time.
	KeyType() Type
}

// DirectApplier is implemented by tables that can rewrite every value in
// place from a Go closure directly, without routing through a named,
// backend-registered function first. The SQLite backend implements this
// (see sqlitekv.Table.ApplyFunc): database/sql over modernc.org/sqlite
// cannot register scalar functions the way the source's sqlite3.
// create_function or the memory-mapped backend's function map can, so
// Backend.CreateFunction there always fails with ErrNoSuchFunction and the
// cache facade falls back to this interface instead.
type DirectApplier interface {
	ApplyFunc(fn func([]byte) []byte, progress ProgressReporter) error
}

// TableDirectory maps logical table names ("data", "metadata") to physical
// table names, mirroring the source's Tablez.map.
type TableDirectory map[string]string

// reserved logical table names, used by the cache facade.
const (
	LogicalData     = "data"
	LogicalMetadata = "metadata"
)
