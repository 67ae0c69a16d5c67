package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "photos"))
	require.NoError(t, err)
	return store
}

func TestDiskStoreSaveAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice/cat.png", strings.NewReader("data"), "image/png"))

	exists, err := store.Exists(ctx, "alice/cat.png")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(store.Root(), "alice", "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	exists, err = store.Exists(ctx, "alice/missing.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiskStoreRename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice/cat.png", strings.NewReader("data"), "image/png"))

	require.NoError(t, store.Rename(ctx, "alice/cat.png", "alice/kitten.png"))

	exists, err := store.Exists(ctx, "alice/kitten.png")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "alice/cat.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiskStoreRenameRefusesOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice/cat.png", strings.NewReader("a"), "image/png"))
	require.NoError(t, store.Save(ctx, "alice/dog.png", strings.NewReader("b"), "image/png"))

	err := store.Rename(ctx, "alice/dog.png", "alice/cat.png")
	assert.ErrorIs(t, err, ErrExists)
}

func TestDiskStoreDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice/cat.png", strings.NewReader("data"), "image/png"))
	require.NoError(t, store.Delete(ctx, "alice/cat.png"))
	require.NoError(t, store.Delete(ctx, "alice/cat.png"))
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../escape", "alice/../../escape", "alice//x"} {
		err := store.Save(ctx, key, strings.NewReader("data"), "image/png")
		assert.Error(t, err, "key %q must be rejected", key)
	}
}
