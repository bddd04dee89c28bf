package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "stores/vectors.tv"
	data := []byte("hello world, this is a test blob")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = os.Stat(filepath.Join(tmpDir, "stores", "vectors.tv"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(tmpDir, "stores", "vectors.tv"))
	require.NoError(t, err)

	b, err := store.Open(ctx, name)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, 5)
	n, err = b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	rc, err := b.ReadRange(ctx, 0, b.Size())
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, data, got)

	m, ok := b.(Mappable)
	require.True(t, ok)
	raw, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, raw)

	require.NoError(t, b.Close())

	names, err := store.List(ctx, "stores/")
	require.NoError(t, err)
	require.Equal(t, []string{"stores/vectors.tv"}, names)

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	require.NoError(t, store.Delete(ctx, name))
}

func TestLocalStore_ReadRangeBoundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "digits", []byte("0123456789")))

	b, err := store.Open(ctx, "digits")
	require.NoError(t, err)
	defer b.Close()

	rc, err := b.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "89", string(got))

	_, err = b.ReadRange(ctx, 10, 1)
	assert.ErrorIs(t, err, io.EOF)

	_, err = b.ReadRange(ctx, -1, 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_Abort(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "keep", []byte("v1")))

	w, err := store.Create(ctx, "keep")
	require.NoError(t, err)
	_, err = w.Write([]byte("v2-partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	require.Error(t, w.Close())

	b, err := store.Open(ctx, "keep")
	require.NoError(t, err)
	defer b.Close()
	buf := make([]byte, 2)
	_, err = b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(buf))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStore_ListSkipsTempFiles(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b", []byte("2")))
	require.NoError(t, store.Put(ctx, "a", []byte("1")))

	w, err := store.Create(ctx, "pending")
	require.NoError(t, err)
	defer func() { _ = w.Abort() }()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_InvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "/abs"} {
		_, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Put(ctx, name, nil), ErrInvalidName, name)
	}
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	b, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(0), b.Size())
	_, err = b.ReadRange(ctx, 0, 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "x", []byte("abc")))

	b, err := store.Open(context.Background(), "x")
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = b.ReadRange(ctx, 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
