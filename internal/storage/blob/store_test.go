package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/apperror"
)

func TestDiskStore_RoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("release notes draft")
	key, err := store.Store(ctx, content)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	got, err := store.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDiskStore_DeduplicatesContent(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key1, err := store.Store(ctx, []byte("same bytes"))
	require.NoError(t, err)
	key2, err := store.Store(ctx, []byte("same bytes"))
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	key3, err := store.Store(ctx, []byte("other bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func TestDiskStore_FetchUnknownKey(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Fetch(ctx, "0000000000000000000000000000000000000000000000000000000000000000")
	assert.True(t, apperror.IsNotFound(err))

	// malformed keys never touch the filesystem
	_, err = store.Fetch(ctx, "../../etc/passwd")
	assert.True(t, apperror.IsNotFound(err))
}
