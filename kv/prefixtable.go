package kv

// byteStore is the minimal flat keyed byte store PrefixTable needs from a
// backend that only exposes one physical namespace (used by kv/mdbxkv when
// running against an engine handle with a small max-named-databases ceiling,
// so "data" and "metadata" share one physical sub-database instead of two;
// "keyTypes" keeps its own).
type byteStore interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, val []byte) error
	Delete(key []byte) error
	// Scan calls yield for every key in the store that carries prefix, with
	// the prefix stripped. Iteration stops early if yield returns false.
	Scan(prefix []byte, yield func(key, val []byte) bool) error
	Len(prefix []byte) (int64, error)
	DropPrefix(prefix []byte) error
}

// PrefixTable namespaces a single physical byteStore by prepending a fixed
// prefix to every key, so multiple logical tables can share one underlying
// store without key collisions. Grounded on the pack's rawdb.Table prefixing
// wrapper: same prefix/strip shape, adapted to the kv.Table contract (Create/
// ApplyToValues/KeyType) this module needs instead of rawdb's KeyValueStore.
type PrefixTable struct {
	store     byteStore
	prefix    []byte
	keyType   Type
	functions map[string]func([]byte) []byte
}

// NewPrefixTable builds a Table that prepends prefix to every key written to
// store, and strips it back off on reads/iteration. functions is the owning
// backend's named-function registry (shared, not copied), so a function
// registered via Backend.CreateFunction is visible to ApplyToValues here the
// same way it is to a normally-named table.
func NewPrefixTable(store byteStore, prefix string, keyType Type, functions map[string]func([]byte) []byte) *PrefixTable {
	return &PrefixTable{store: store, prefix: []byte(prefix), keyType: keyType, functions: functions}
}

func (t *PrefixTable) prefixed(key []byte) []byte {
	out := make([]byte, len(t.prefix)+len(key))
	copy(out, t.prefix)
	copy(out[len(t.prefix):], key)
	return out
}

// Exists reports whether any record under this table's prefix exists.
func (t *PrefixTable) Exists() (bool, error) {
	n, err := t.store.Len(t.prefix)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create is a no-op: a PrefixTable's namespace springs into existence the
// first time a key is written under its prefix.
func (t *PrefixTable) Create(keyType, _ Type) error {
	t.keyType = keyType
	return nil
}

// Len reports the number of records under this table's prefix.
func (t *PrefixTable) Len() (int64, error) {
	return t.store.Len(t.prefix)
}

// Get retrieves the value for key, stripped of the table's prefix handling.
func (t *PrefixTable) Get(key []byte) ([]byte, bool, error) {
	return t.store.Get(t.prefixed(key))
}

// Put stores val under key, namespaced by the table's prefix.
func (t *PrefixTable) Put(key, val []byte) error {
	return t.store.Put(t.prefixed(key), val)
}

// Delete removes key, namespaced by the table's prefix.
func (t *PrefixTable) Delete(key []byte) error {
	return t.store.Delete(t.prefixed(key))
}

// Drop removes every record under this table's prefix.
func (t *PrefixTable) Drop() error {
	return t.store.DropPrefix(t.prefix)
}

func (t *PrefixTable) collect(wantKeys, wantValues bool) Cursor {
	var keys, values [][]byte
	_ = t.store.Scan(t.prefix, func(k, v []byte) bool {
		if wantKeys {
			kk := make([]byte, len(k))
			copy(kk, k)
			keys = append(keys, kk)
		}
		if wantValues {
			vv := make([]byte, len(v))
			copy(vv, v)
			values = append(values, vv)
		}
		return true
	})
	return NewSliceCursor(keys, values)
}

// Keys iterates over all keys under this table's prefix.
func (t *PrefixTable) Keys() Cursor { return t.collect(true, false) }

// Values iterates over all values under this table's prefix.
func (t *PrefixTable) Values() Cursor { return t.collect(false, true) }

// Items iterates over all key/value pairs under this table's prefix.
func (t *PrefixTable) Items() Cursor { return t.collect(true, true) }

// ApplyToValues rewrites every value under this table's prefix by calling the
// function registered under fnName (via the owning backend's CreateFunction),
// matching the kv.Table contract every other backend's table satisfies.
func (t *PrefixTable) ApplyToValues(fnName string, progress ProgressReporter) error {
	fn, ok := t.functions[fnName]
	if !ok {
		return ErrNoSuchFunction
	}
	total, _ := t.Len()
	var n int64
	var puts [][2][]byte
	if err := t.store.Scan(t.prefix, func(k, v []byte) bool {
		kk := append([]byte(nil), k...)
		vv := fn(append([]byte(nil), v...))
		puts = append(puts, [2][]byte{kk, vv})
		return true
	}); err != nil {
		return err
	}
	for _, kv := range puts {
		if err := t.store.Put(t.prefixed(kv[0]), kv[1]); err != nil {
			return err
		}
		n++
		progress.Report(string(kv[0]), &n, &total, "recompress")
	}
	return nil
}

// KeyType reports the table's declared physical key type.
func (t *PrefixTable) KeyType() Type { return t.keyType }

var _ Table = (*PrefixTable)(nil)
