package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/blobcache/codec"
	"github.com/erigontech/blobcache/kv"
)

func tempCachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sqlite")
}

// backendExtensions names the file extension resolveBackend maps to each
// concrete kv.Backend, so facade-level tests can run once per backend
// instead of only ever exercising sqlitekv.
var backendExtensions = []string{".sqlite", ".mdb"}

func tempCachePathExt(t *testing.T, ext string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test"+ext)
}

// forEachBackend runs fn once per concrete backend (sqlitekv, mdbxkv), each
// as its own subtest named after the file extension, with a fresh temp path.
func forEachBackend(t *testing.T, fn func(t *testing.T, path string)) {
	t.Helper()
	for _, ext := range backendExtensions {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			fn(t, tempCachePathExt(t, ext))
		})
	}
}

func openCache(t *testing.T, path string, opts ...Option) *Cache {
	t.Helper()
	c, err := New(path, opts...)
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(c.Close)
	return c
}

func TestNewRejectsUnrecognisedExtension(t *testing.T) {
	_, err := New("foo.bin")
	assert.ErrorIs(t, err, ErrBadBase)
}

func TestNewRejectsUnsupportedBaseType(t *testing.T) {
	_, err := New(42)
	assert.ErrorIs(t, err, ErrBadBase)
}

func TestBlobFlavorPutGetDeleteContains(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path)

		ok, err := c.Contains("missing")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.Put("k", []byte("hello")))

		v, found, err := c.Get("k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("hello"), v)

		ok, err = c.Contains("k")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, c.Delete("k"))
		_, found, err = c.Get("k")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestPutNilValueDeletes(t *testing.T) {
	c := openCache(t, tempCachePath(t))
	require.NoError(t, c.Put("k", []byte("v")))
	require.NoError(t, c.Put("k", nil))

	_, found, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEmptyStoredValueReadsAsAbsent(t *testing.T) {
	// Regression test for the preserved source quirk (see DESIGN.md): a
	// present-but-zero-length raw stored value must read back as absent, and
	// Contains must inherit that.
	c := openCache(t, tempCachePath(t))
	require.NoError(t, c.Put("k", []byte{}))

	_, found, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := c.Contains("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONFlavorRoundTrip(t *testing.T) {
	c := openCache(t, tempCachePath(t), WithFlavor(codec.JSONFlavor))
	in := map[string]any{"a": float64(1), "b": "two"}
	require.NoError(t, c.Put("k", in))

	v, found, err := c.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, v)
}

func TestLenKeysValuesItems(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path)
		require.NoError(t, c.Put("a", []byte("1")))
		require.NoError(t, c.Put("b", []byte("2")))

		n, err := c.Len()
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		keys, err := c.Keys()
		require.NoError(t, err)
		assert.ElementsMatch(t, []any{"a", "b"}, keys)

		values, err := c.Values()
		require.NoError(t, err)
		assert.ElementsMatch(t, []any{[]byte("1"), []byte("2")}, values)

		items, err := c.Items()
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestPopulateAndEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path)
		pairs := []Item{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}}
		require.NoError(t, c.Populate(pairs, kv.NoopProgress{}))

		n, err := c.Len()
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		require.NoError(t, c.Empty())
		n, err = c.Len()
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestReattachWithMatchingFlavorSucceeds(t *testing.T) {
	path := tempCachePath(t)
	c1, err := New(path, WithFlavor(codec.JSONFlavor))
	require.NoError(t, err)
	require.NoError(t, c1.Open(context.Background()))
	require.NoError(t, c1.Put("k", "v"))
	c1.Close()

	c2, err := New(path, WithFlavor(codec.JSONFlavor))
	require.NoError(t, err)
	require.NoError(t, c2.Open(context.Background()))
	defer c2.Close()

	v, found, err := c2.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", v)
}

func TestReattachWithMismatchedFlavorFails(t *testing.T) {
	path := tempCachePath(t)
	c1, err := New(path, WithFlavor(codec.JSONFlavor))
	require.NoError(t, err)
	require.NoError(t, c1.Open(context.Background()))
	c1.Close()

	c2, err := New(path, WithFlavor(codec.MsgpackFlavor))
	require.NoError(t, err)
	err = c2.Open(context.Background())
	assert.ErrorIs(t, err, ErrIncompatibleCodecs)
}

func TestReattachWithMismatchedKeyTypeFails(t *testing.T) {
	path := tempCachePath(t)
	c1, err := New(path, WithKeyType(kv.NativeKeyType(kv.Str)))
	require.NoError(t, err)
	require.NoError(t, c1.Open(context.Background()))
	c1.Close()

	c2, err := New(path, WithKeyType(kv.NativeKeyType(kv.Int)))
	require.NoError(t, err)
	err = c2.Open(context.Background())
	assert.ErrorIs(t, err, ErrIncompatibleKeyType)
}

func TestOptimizeCompressionRequiresDictTrainer(t *testing.T) {
	c := openCache(t, tempCachePath(t), WithCompressor("deflate"))
	err := c.OptimizeCompression(0, kv.NoopProgress{})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestOptimizeCompressionTrainsAndPreservesValues(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path, WithCompressor("zstd"))
		for i := 0; i < 20; i++ {
			require.NoError(t, c.Put(string(rune('a'+i)), []byte("repeated payload content for dictionary training")))
		}

		require.NoError(t, c.OptimizeCompression(0, kv.NoopProgress{}))

		stats, err := c.Stats()
		require.NoError(t, err)
		assert.True(t, stats.HasDictionary)

		v, found, err := c.Get("a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("repeated payload content for dictionary training"), v)

		// Durability (P5): the dictionary swap's BeginTx/Commit pairing must
		// actually land on disk, not just remain visible within the still-open
		// session that performed it.
		c.Close()
		reopened := openCache(t, path, WithCompressor("zstd"))
		stats, err = reopened.Stats()
		require.NoError(t, err)
		assert.True(t, stats.HasDictionary)

		v, found, err = reopened.Get("a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("repeated payload content for dictionary training"), v)
	})
}

func TestApplyCompressionDictionaryNoopWhenUnchanged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path, WithCompressor("zstd"))
		require.NoError(t, c.Put("a", []byte("value")))

		dict := []byte("some dictionary bytes")
		require.NoError(t, c.ApplyCompressionDictionary(dict, kv.NoopProgress{}))
		require.NoError(t, c.ApplyCompressionDictionary(dict, kv.NoopProgress{}))

		v, found, err := c.Get("a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("value"), v)

		c.Close()
		reopened := openCache(t, path, WithCompressor("zstd"))
		v, found, err = reopened.Get("a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("value"), v)
	})
}

func TestRecompressOnePanicsOutsideSwap(t *testing.T) {
	c := openCache(t, tempCachePath(t))
	assert.PanicsWithValue(t, ErrInternalInvariant, func() {
		c.recompressOne([]byte("x"))
	})
}

func TestRecompressToFreshFile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path, WithCompressor("none"))
		require.NoError(t, c.Put("a", []byte("1")))
		require.NoError(t, c.Put("b", []byte("2")))

		targetPath := filepath.Join(t.TempDir(), "recompressed"+filepath.Ext(path))
		require.NoError(t, c.Recompress(context.Background(), targetPath, "zstd", false, kv.NoopProgress{}))

		fresh, err := New(targetPath, WithCompressor("zstd"))
		require.NoError(t, err)
		require.NoError(t, fresh.Open(context.Background()))
		defer fresh.Close()

		v, found, err := fresh.Get("a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("1"), v)
	})
}

func TestStats(t *testing.T) {
	forEachBackend(t, func(t *testing.T, path string) {
		c := openCache(t, path, WithFlavor(codec.JSONFlavor), WithCompressor("zstd"))
		require.NoError(t, c.Put("k", "v"))

		stats, err := c.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Entries)
		assert.Equal(t, "json", stats.Flavor)
		assert.Equal(t, "zstd", stats.Compressor)
	})
}

func TestCommitEveryNOpsBatchesCommits(t *testing.T) {
	c := openCache(t, tempCachePath(t), WithCommitEveryNOps(3))
	require.NoError(t, c.Put("a", []byte("1")))
	require.NoError(t, c.Put("b", []byte("2")))
	assert.Equal(t, 2, c.opsPending)
	require.NoError(t, c.Put("c", []byte("3")))
	assert.Equal(t, 0, c.opsPending)
}
