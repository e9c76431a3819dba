package mdbxkv

import (
	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/erigontech/blobcache/kv"
)

// Table is a kv.Table backed by one mdbx sub-database.
type Table struct {
	backend *Backend
	name    string
	dbi     mdbx.DBI
	opened  bool
	keyType kv.Type
}

func (t *Table) metaKey() string { return t.backend.keyTypeMetaKey(t.name) }

func (t *Table) Exists() (bool, error) {
	id, ok := t.backend.keyTypes[t.metaKey()]
	return ok && id != "", nil
}

// Create records the declared key type in the keyTypes sub-DB and opens the
// table's own sub-DB, using the integer-keyed fast path when keyType is
// kv.Int (the source's lmdbUint64KeyTransformer branch).
func (t *Table) Create(keyType, valType kv.Type) error {
	t.keyType = keyType
	t.backend.keyTypes[t.metaKey()] = keyType.String()

	flags := mdbx.Create
	if keyType == kv.Int {
		flags |= mdbx.IntegerKey
	}
	return t.backend.env.Update(func(txn *mdbx.Txn) error {
		dbi, err := txn.OpenDBI(t.name, flags, nil, nil)
		if err != nil {
			return err
		}
		t.dbi = dbi
		t.opened = true
		ktDbi, err := txn.OpenDBI(keyTypesDB, mdbx.Create, nil, nil)
		if err != nil {
			return err
		}
		return txn.Put(ktDbi, []byte(t.metaKey()), []byte(keyType.String()), 0)
	})
}

func (t *Table) ensureOpen() error {
	if t.opened {
		return nil
	}
	id, ok := t.backend.keyTypes[t.metaKey()]
	if !ok {
		return kv.ErrTableNotMapped
	}
	switch id {
	case kv.Int.String():
		t.keyType = kv.Int
	case kv.Str.String():
		t.keyType = kv.Str
	default:
		t.keyType = kv.Bytes
	}
	flags := mdbx.DBIFlags(0)
	if t.keyType == kv.Int {
		flags |= mdbx.IntegerKey
	}
	return t.backend.env.View(func(txn *mdbx.Txn) error {
		dbi, err := txn.OpenDBI(t.name, flags, nil, nil)
		if err != nil {
			return err
		}
		t.dbi = dbi
		t.opened = true
		return nil
	})
}

func (t *Table) Len() (int64, error) {
	if err := t.ensureOpen(); err != nil {
		return 0, err
	}
	var n int64
	err := t.backend.env.View(func(txn *mdbx.Txn) error {
		stat, err := txn.Stat(t.dbi)
		if err != nil {
			return err
		}
		n = int64(stat.Entries)
		return nil
	})
	return n, err
}

func (t *Table) Get(key []byte) ([]byte, bool, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, false, err
	}
	var val []byte
	var found bool
	err := t.backend.env.View(func(txn *mdbx.Txn) error {
		v, err := txn.Get(t.dbi, key)
		if mdbx.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		val = append([]byte(nil), v...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return val, found, nil
}

func (t *Table) Put(key, val []byte) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.backend.wtx.begin(); err != nil {
		return err
	}
	defer t.backend.wtx.commit()
	return t.backend.wtx.txn.Put(t.dbi, key, val, 0)
}

func (t *Table) Delete(key []byte) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.backend.wtx.begin(); err != nil {
		return err
	}
	defer t.backend.wtx.commit()
	err := t.backend.wtx.txn.Del(t.dbi, key, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

func (t *Table) Drop() error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.backend.wtx.begin(); err != nil {
		return err
	}
	defer t.backend.wtx.commit()
	if err := t.backend.wtx.txn.Drop(t.dbi, true); err != nil {
		return err
	}
	delete(t.backend.keyTypes, t.metaKey())
	t.opened = false
	return nil
}

func (t *Table) collect(wantKeys, wantValues bool) kv.Cursor {
	if err := t.ensureOpen(); err != nil {
		return kv.NewSliceCursor(nil, nil)
	}
	var keys, values [][]byte
	_ = t.backend.env.View(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(t.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()
		for {
			k, v, err := cur.Get(nil, nil, mdbx.Next)
			if err != nil {
				break
			}
			if wantKeys {
				keys = append(keys, append([]byte(nil), k...))
			}
			if wantValues {
				values = append(values, append([]byte(nil), v...))
			}
		}
		return nil
	})
	return kv.NewSliceCursor(keys, values)
}

func (t *Table) Keys() kv.Cursor   { return t.collect(true, false) }
func (t *Table) Values() kv.Cursor { return t.collect(false, true) }
func (t *Table) Items() kv.Cursor  { return t.collect(true, true) }

// ApplyToValues walks a cursor over every record and replaces each value
// with the registered function's output, reporting progress per record —
// the Go rendering of the source's LMDBBackend.Table.applyToValues.
func (t *Table) ApplyToValues(fnName string, progress kv.ProgressReporter) error {
	fn, ok := t.backend.functions[fnName]
	if !ok {
		return kv.ErrNoSuchFunction
	}
	if err := t.ensureOpen(); err != nil {
		return err
	}
	total, _ := t.Len()
	var n int64
	if err := t.backend.wtx.begin(); err != nil {
		return err
	}
	defer t.backend.wtx.commit()

	cur, err := t.backend.wtx.txn.OpenCursor(t.dbi)
	if err != nil {
		return err
	}
	defer cur.Close()
	for {
		k, v, err := cur.Get(nil, nil, mdbx.Next)
		if err != nil {
			break
		}
		newVal := fn(append([]byte(nil), v...))
		if err := cur.Put(k, newVal, mdbx.Current); err != nil {
			return err
		}
		n++
		progress.Report(string(k), &n, &total, "recompress")
	}
	return nil
}

func (t *Table) KeyType() kv.Type { return t.keyType }
