package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsStableForSameContent(t *testing.T) {
	a, err := Hash([]byte("int main(void) { return 0; }"))
	require.NoError(t, err)
	b, err := Hash([]byte("int main(void) { return 0; }"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Hash([]byte("int main(void) { return 1; }"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "deadbeef", "cfg", "json")
	require.NoError(t, err)
	assert.False(t, ok, "expected a cache miss before any Put")

	require.NoError(t, store.Put(ctx, "deadbeef", "cfg", "json", []byte(`{"nodes":[]}`)))

	payload, ok, err := store.Get(ctx, "deadbeef", "cfg", "json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"nodes":[]}`, string(payload))
}

func TestStorePutOverwritesExistingEntry(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "h1", "sdfg", "dot", []byte("first")))
	require.NoError(t, store.Put(ctx, "h1", "sdfg", "dot", []byte("second")))

	payload, ok, err := store.Get(ctx, "h1", "sdfg", "dot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(payload))
}
