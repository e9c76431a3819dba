// Package sqlitekv implements kv.Backend over a SQLite file, selected when
// the cache's base path carries a ".sqlite" extension. Grounded on the
// original source's SQLiteBackend (Cache/storageBackends/sqlite.py): SQL
// tables with (key PRIMARY KEY, val) columns, types derived from the
// declared physical type via a fixed map, data-size via the dbstat virtual
// table, vacuum via reindex+vacuum, optimize via PRAGMA optimize. Uses
// modernc.org/sqlite (pure Go, no cgo) through database/sql, the teacher's
// own direct dependency.
package sqlitekv

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pkg/errors"

	"github.com/erigontech/blobcache/kv"
)

// columnType maps a kv.Type to its SQLite column affinity.
var columnType = map[kv.Type]string{
	kv.Int:   "INTEGER",
	kv.Str:   "TEXT",
	kv.Bytes: "BLOB",
}

// sqlType maps a SQLite column affinity back to a kv.Type.
var sqlType = map[string]kv.Type{
	"INTEGER": kv.Int,
	"TEXT":    kv.Str,
	"BLOB":    kv.Bytes,
}

// Backend is a kv.Backend over a SQLite database file (or an in-memory
// SQLite database when path is ":memory:").
type Backend struct {
	path string
	db   *sql.DB
	inTx bool
}

// New builds a Backend that will open path on Open.
func New(path string) *Backend {
	return &Backend{path: path}
}

// Path reports the file path this backend was constructed against.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Open(ctx context.Context) error {
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return errors.Wrap(err, "sqlitekv: open")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(err, "sqlitekv: ping")
	}
	// A Cache is not safe for concurrent use (single-threaded cooperative
	// scheduling, see cache.Cache's doc comment), and an explicit "begin;" /
	// "commit;" pair issued as bare Exec calls only spans one transaction if
	// every statement in between lands on the same underlying connection —
	// database/sql's pool would otherwise happily hand BeginTx's "begin;" to
	// one connection and a later Table.Put to another, silently losing the
	// transaction. Pinning the pool to one connection makes that hold.
	db.SetMaxOpenConns(1)
	b.db = db
	return nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Commit finalizes any transaction opened by BeginTx. Outside an explicit
// transaction, SQLite in database/sql autocommit mode has already persisted
// each statement as it ran, so Commit is a no-op in that case.
func (b *Backend) Commit() error {
	if !b.inTx {
		return nil
	}
	_, err := b.db.Exec("commit;")
	b.inTx = false
	return err
}

// BeginTx opens an explicit transaction spanning the mutations until the
// matching Commit. The teacher's own transaction wrapping (erigon-lib/kv's
// explicit begin/commit pattern) is mirrored here at the statement level:
// a bare "begin;" issued directly against the connection, matching the
// source's SQLiteBackend.beginTransaction.
func (b *Backend) BeginTx() error {
	if _, err := b.db.Exec("begin;"); err != nil {
		return err
	}
	b.inTx = true
	return nil
}

func (b *Backend) Vacuum() error {
	if _, err := b.db.Exec("reindex;"); err != nil {
		return errors.Wrap(err, "sqlitekv: reindex")
	}
	if _, err := b.db.Exec("vacuum;"); err != nil {
		return errors.Wrap(err, "sqlitekv: vacuum")
	}
	return nil
}

func (b *Backend) Optimize() error {
	_, err := b.db.Exec("PRAGMA optimize;")
	return err
}

// CreateFunction is not supported by database/sql's driver-agnostic surface
// (modernc.org/sqlite does not expose sqlite3_create_function through the
// database/sql driver interface the way the cgo mattn/go-sqlite3 driver
// does). apply_to_values is implemented instead by reading, transforming in
// Go, and rewriting rows directly — see Table.ApplyFunc.
func (b *Backend) CreateFunction(name string, fn func([]byte) []byte) error {
	return kv.ErrNoSuchFunction
}

func (b *Backend) Tables() kv.TableDirectory {
	return kv.TableDirectory{
		kv.LogicalData:     "data",
		kv.LogicalMetadata: "metadata",
	}
}

func (b *Backend) MapTable(logical, physical string) (kv.Table, error) {
	return &Table{db: b.db, name: physical}, nil
}

func (b *Backend) NativeValueTypes() []kv.Type { return []kv.Type{kv.Int, kv.Str, kv.Bytes} }
func (b *Backend) NativeKeyTypes() []kv.Type   { return []kv.Type{kv.Int, kv.Str, kv.Bytes} }

// DataSize sums page/wasted-byte stats from the dbstat virtual table, as the
// source's getDataSize does.
func (b *Backend) DataSize() (kv.SizeStat, error) {
	row := b.db.QueryRow("SELECT sum(`pgsize`) as total, sum(`unused`) as wasted FROM `dbstat` WHERE name=?;", "data")
	var total, wasted sql.NullInt64
	if err := row.Scan(&total, &wasted); err != nil {
		return kv.SizeStat{}, fmt.Errorf("sqlitekv: data size: %w", err)
	}
	if !total.Valid {
		return kv.SizeStat{}, kv.ErrSizeUnknown
	}
	return kv.SizeStat{Total: total.Int64, Wasted: wasted.Int64, Known: true}, nil
}
