package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF8RoundTrip(t *testing.T) {
	fwd, err := UTF8.Forward("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), fwd)

	rev, err := UTF8.Reverse(fwd)
	require.NoError(t, err)
	assert.Equal(t, "hello", rev)
}

func TestUTF8TypeMismatch(t *testing.T) {
	_, err := UTF8.Forward(42)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = UTF8.Reverse("not bytes")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestJSONRoundTrip(t *testing.T) {
	in := map[string]any{"a": float64(1), "b": "two"}
	fwd, err := JSON.Forward(in)
	require.NoError(t, err)
	s, ok := fwd.(string)
	require.True(t, ok)

	rev, err := JSON.Reverse(s)
	require.NoError(t, err)
	assert.Equal(t, in, rev)
}

func TestPONRoundTrip(t *testing.T) {
	in := []any{"x", float64(3)}
	fwd, err := PON.Forward(in)
	require.NoError(t, err)

	rev, err := PON.Reverse(fwd)
	require.NoError(t, err)
	assert.Equal(t, in, rev)
}

func TestStackWrapOrder(t *testing.T) {
	// JSONFlavor wraps json around string's {utf8}, so the internal order is
	// [json, utf8]: json sits nearest the user-facing value.
	ids := JSONFlavor.Stack.ID()
	assert.Equal(t, []string{"json", "utf8"}, ids)
}

func TestStackForwardReverseRoundTrip(t *testing.T) {
	stack := StringFlavor.Stack.Wrap(JSON)
	in := map[string]any{"k": "v"}

	b, err := stack.Forward(in)
	require.NoError(t, err)

	out, err := stack.Reverse(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStackEqual(t *testing.T) {
	assert.True(t, JSONFlavor.Stack.Equal([]string{"json", "utf8"}))
	assert.False(t, JSONFlavor.Stack.Equal([]string{"utf8", "json"}))
	assert.False(t, JSONFlavor.Stack.Equal([]string{"json"}))
}

func TestStackSourceTypeEmpty(t *testing.T) {
	assert.Equal(t, Blob, BlobFlavor.Stack.SourceType())
	assert.Equal(t, Any, JSONFlavor.Stack.SourceType())
}

func TestRegistryShortestPath(t *testing.T) {
	// Any->Blob has several one-hop candidates (bson, cbor, msgpack) and a
	// longer json->utf8 path; BFS must prefer the one-hop route, breaking the
	// tie among one-hop candidates by lexicographically smallest id.
	path, err := Default.ShortestPath(Any, Blob)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "bson", path[0].ID())
}

func TestRegistryShortestPathDirect(t *testing.T) {
	path, err := Default.ShortestPath(String, Blob)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "utf8", path[0].ID())
}

func TestRegistryNoPath(t *testing.T) {
	r := NewRegistry()
	r.Register(UTF8)
	_, err := r.ShortestPath(Blob, Any)
	assert.Error(t, err)
}

func TestRegistrySameTypeEmptyPath(t *testing.T) {
	path, err := Default.ShortestPath(Blob, Blob)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestMsgpackCborRoundTrip(t *testing.T) {
	in := map[string]any{"n": int64(7)}
	for _, c := range []Codec{MsgPack, CBOR} {
		fwd, err := c.Forward(in)
		require.NoError(t, err, c.ID())
		rev, err := c.Reverse(fwd)
		require.NoError(t, err, c.ID())
		assert.Equal(t, int64(7), rev.(map[string]any)["n"], c.ID())
	}
}

func TestBSONRoundTrip(t *testing.T) {
	fwd, err := BSON.Forward("hello")
	require.NoError(t, err)
	rev, err := BSON.Reverse(fwd)
	require.NoError(t, err)
	assert.Equal(t, "hello", rev)
}
