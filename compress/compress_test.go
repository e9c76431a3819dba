package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func allIDs() []string {
	return []string{"none", "zstd", "deflate", "lz4", "brotli", "bzip2", "lzma", "snappy"}
}

func TestCatalogResolvesEveryCompressor(t *testing.T) {
	for _, id := range allIDs() {
		f, err := Default.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, f.ID())
	}
}

func TestCatalogBestResolvesToZstd(t *testing.T) {
	f, err := Default.Get("best")
	require.NoError(t, err)
	assert.Equal(t, "zstd", f.ID())
}

func TestCatalogUnknownID(t *testing.T) {
	_, err := Default.Get("no-such-compressor")
	assert.Error(t, err)
}

func TestRoundTripEveryCompressor(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, to give compressors something to chew on")
	for _, id := range allIDs() {
		f, err := Default.Get(id)
		require.NoError(t, err, id)
		c, err := f.New(Options{})
		require.NoError(t, err, id)

		compressed, err := c.Compress(payload)
		require.NoError(t, err, id)

		out, err := c.Decompress(compressed)
		require.NoError(t, err, id)
		assert.Equal(t, payload, out, id)
	}
}

func TestRoundTripEveryCompressorProperty(t *testing.T) {
	for _, id := range allIDs() {
		id := id
		t.Run(id, func(t *testing.T) {
			f, err := Default.Get(id)
			require.NoError(t, err)
			c, err := f.New(Options{})
			require.NoError(t, err)

			rapid.Check(t, func(rt *rapid.T) {
				payload := rapid.SliceOf(rapid.Byte()).Draw(rt, "payload")
				compressed, err := c.Compress(payload)
				require.NoError(rt, err)
				out, err := c.Decompress(compressed)
				require.NoError(rt, err)
				assert.Equal(rt, payload, out)
			})
		})
	}
}

func TestZstdDictionaryRoundTrip(t *testing.T) {
	f, err := Default.Get("zstd")
	require.NoError(t, err)

	plain, err := f.New(Options{})
	require.NoError(t, err)
	zc, ok := plain.(DictTrainer)
	require.True(t, ok, "zstd must implement DictTrainer")

	samples := [][]byte{
		[]byte("alpha beta gamma"),
		[]byte("alpha beta delta"),
		[]byte("alpha gamma delta"),
	}
	dict, err := zc.TrainDictionary(samples, 32)
	require.NoError(t, err)
	assert.NotEmpty(t, dict)

	dicted, err := f.New(Options{Dictionary: dict})
	require.NoError(t, err)

	payload := []byte("alpha beta gamma delta")
	compressed, err := dicted.Compress(payload)
	require.NoError(t, err)
	out, err := dicted.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestNonDictCompressorsDoNotImplementDictTrainer(t *testing.T) {
	for _, id := range []string{"none", "deflate", "lz4", "brotli", "bzip2", "lzma", "snappy"} {
		f, err := Default.Get(id)
		require.NoError(t, err)
		c, err := f.New(Options{})
		require.NoError(t, err)
		_, ok := c.(DictTrainer)
		assert.False(t, ok, id)
	}
}

func TestNoneCompressorIsIdentity(t *testing.T) {
	f, err := Default.Get("none")
	require.NoError(t, err)
	c, err := f.New(Options{})
	require.NoError(t, err)

	in := []byte("raw bytes, unchanged")
	out, err := c.Compress(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
