package mdbxkv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/blobcache/kv"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.mdb")
	b := New(path)
	require.NoError(t, b.Open(context.Background()))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendOpenExposesLogicalTables(t *testing.T) {
	b := newTestBackend(t)
	assert.Equal(t, "data", b.Tables()[kv.LogicalData])
	assert.Equal(t, "metadata", b.Tables()[kv.LogicalMetadata])
}

func TestBackendNativeTypes(t *testing.T) {
	b := newTestBackend(t)
	assert.Equal(t, []kv.Type{kv.Bytes}, b.NativeValueTypes())
	assert.Equal(t, []kv.Type{kv.Bytes, kv.Int}, b.NativeKeyTypes())
}

func TestBackendDataSizeAlwaysUnknown(t *testing.T) {
	// Preserves the source's getDataSize bug deliberately (see DESIGN.md).
	b := newTestBackend(t)
	_, err := b.DataSize()
	assert.ErrorIs(t, err, kv.ErrSizeUnknown)
}

func TestBackendVacuumAndOptimizeAreNoops(t *testing.T) {
	b := newTestBackend(t)
	assert.NoError(t, b.Vacuum())
	assert.NoError(t, b.Optimize())
}

func TestTableCreateGetPutDelete(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Bytes, kv.Bytes))

	_, found, err := tbl.Get([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, tbl.Put([]byte("k1"), []byte("v1")))
	v, found, err := tbl.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v1"), v)

	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, tbl.Delete([]byte("k1")))
	_, found, err = tbl.Get([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTableIntegerKeyedFastPath(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Int, kv.Bytes))
	assert.Equal(t, kv.Int, tbl.KeyType())

	// An integer-keyed sub-DB takes fixed-width keys; the cache writes 8 bytes.
	key := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	require.NoError(t, tbl.Put(key, []byte("v")))
	v, found, err := tbl.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestTableReattachReadsPersistedKeyType(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Int, kv.Bytes))

	reattached, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	// ensureOpen lazily reads keyType back from the keyTypes sub-DB on first
	// use, not eagerly from MapTable.
	_, _, err = reattached.Get([]byte("anything"))
	require.NoError(t, err)
	assert.Equal(t, kv.Int, reattached.KeyType())
}

func TestTableKeysValuesItems(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Bytes, kv.Bytes))

	require.NoError(t, tbl.Put([]byte("a"), []byte("1")))
	require.NoError(t, tbl.Put([]byte("b"), []byte("2")))

	items := map[string]string{}
	cur := tbl.Items()
	defer cur.Close()
	for cur.Next() {
		items[string(cur.Key())] = string(cur.Value())
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, items)
}

func TestTableApplyToValuesViaRegisteredFunction(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Bytes, kv.Bytes))
	require.NoError(t, tbl.Put([]byte("a"), []byte("xx")))

	require.NoError(t, b.CreateFunction("double", func(p []byte) []byte { return append(p, p...) }))
	require.NoError(t, tbl.ApplyToValues("double", kv.NoopProgress{}))

	v, _, err := tbl.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("xxxx"), v)
}

func TestTableApplyToValuesUnknownFunction(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Bytes, kv.Bytes))

	err = tbl.ApplyToValues("missing", kv.NoopProgress{})
	assert.ErrorIs(t, err, kv.ErrNoSuchFunction)
}

func TestTableDrop(t *testing.T) {
	b := newTestBackend(t)
	tbl, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(kv.Bytes, kv.Bytes))
	require.NoError(t, tbl.Put([]byte("a"), []byte("1")))

	require.NoError(t, tbl.Drop())
	exists, err := tbl.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

// newConstrainedTestBackend builds a Backend with too low a named-database
// ceiling for data/metadata/keyTypes to each get their own sub-database,
// forcing MapTable onto the shared-store/kv.PrefixTable path.
func newConstrainedTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.mdb")
	b := New(path, WithMaxNamedDBs(2))
	require.NoError(t, b.Open(context.Background()))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestConstrainedBackendMapTableReturnsPrefixTables(t *testing.T) {
	b := newConstrainedTestBackend(t)
	data, err := b.MapTable(kv.LogicalData, "data")
	require.NoError(t, err)
	meta, err := b.MapTable(kv.LogicalMetadata, "metadata")
	require.NoError(t, err)

	require.NoError(t, data.Create(kv.Str, kv.Bytes))
	require.NoError(t, meta.Create(kv.Str, kv.Bytes))

	require.NoError(t, data.Put([]byte("k"), []byte("data-value")))
	require.NoError(t, meta.Put([]byte("k"), []byte("meta-value")))

	// Same key in two logical tables sharing one physical sub-database must
	// not collide: each PrefixTable strips its own prefix on read.
	v, found, err := data.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("data-value"), v)

	v, found, err = meta.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("meta-value"), v)
}
