package blob

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalPutGetDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "ep.wav", []byte("audio")))

	data, err := store.Get(ctx, "ep.wav")
	require.NoError(t, err)
	require.Equal(t, []byte("audio"), data)

	require.NoError(t, store.Delete(ctx, "ep.wav"))

	_, err = store.Get(ctx, "ep.wav")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocalDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "never-stored.wav"))
}

func TestLocalIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "../../escape.wav", []byte("x")))

	// The file must land inside the store directory.
	data, err := store.Get(ctx, "escape.wav")
	require.NoError(t, err)
	require.Equal(t, []byte("x"), data)

	_, err = os.Stat(filepath.Join(dir, "..", "escape.wav"))
	require.True(t, os.IsNotExist(err))
}
