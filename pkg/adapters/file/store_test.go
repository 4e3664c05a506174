package file_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/responsio/pkg/adapters/file"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/aretw0/responsio/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunMediumContract(t, store)
}

func TestFileStore_NoTempLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.New(dir)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, "ns", []byte(`{"n":1}`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ns.json", entries[0].Name())

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns"}, list)
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "../escape", []byte("{}")))
	assert.Error(t, store.Save(ctx, "", []byte("{}")))
}

func TestFileStore_ProbeFailsOnReadOnlyDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(dir, 0o555))

	store := file.New(dir)
	assert.Error(t, store.Probe(context.Background()))

	kv := storage.New(context.Background(), store)
	assert.Equal(t, storage.Volatile, kv.Strategy())
}

func TestFileStore_BacksStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv := storage.New(ctx, file.New(dir))
	require.Equal(t, storage.Durable, kv.Strategy())
	require.NoError(t, kv.Set("history", []string{"<div>a</div>"}))

	reloaded := storage.New(ctx, file.New(dir))
	assert.Equal(t, []any{"<div>a</div>"}, reloaded.Get("history", nil))
}
