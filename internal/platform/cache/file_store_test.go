package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store, err := NewFileStoreWithClock(t.TempDir(), clock.Now)
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff}
	require.NoError(t, store.Set(ctx, "matches-2024-01-01-2024-01-07", payload, time.Hour))

	got, ok, err := store.Get(ctx, "matches-2024-01-01-2024-01-07")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)

	clock.Advance(time.Hour)
	_, ok, err = store.Get(ctx, "matches-2024-01-01-2024-01-07")
	require.NoError(t, err)
	require.False(t, ok)

	_, statErr := os.Stat(filepath.Join(store.dir, "matches-2024-01-01-2024-01-07"+fileSuffix))
	require.True(t, os.IsNotExist(statErr), "expired file should be removed")
}

func TestFileStore_SharedAcrossInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	writer, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, writer.Set(ctx, "k", []byte("v"), time.Minute))

	reader, err := NewFileStore(dir)
	require.NoError(t, err)
	got, ok, err := reader.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(got))
}

func TestFileStore_DeleteAndMissingKey(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-written"))
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_CorruptFileIsMiss(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.path("k"), []byte("{not json"), 0o644))

	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_UnsafeKeyIsHashed(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path := store.path("../../etc/passwd")
	require.Equal(t, store.dir, filepath.Dir(path))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "../../etc/passwd", []byte("v"), time.Minute))
	got, ok, err := store.Get(ctx, "../../etc/passwd")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(got))
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore("")
	require.Error(t, err)
}
