package blobstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("PutOpenRead", func(t *testing.T) {
		data := []byte("hello world")
		require.NoError(t, store.Put(ctx, "a.bin", data))

		blob, err := store.Open(ctx, "a.bin")
		require.NoError(t, err)
		defer blob.Close()

		require.Equal(t, int64(len(data)), blob.Size())

		buf := make([]byte, 5)
		n, err := blob.ReadAt(buf, 6)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		assert.Equal(t, "world", string(buf))

		all, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, data, all)
	})

	t.Run("PutCopies", func(t *testing.T) {
		data := []byte("mutable")
		require.NoError(t, store.Put(ctx, "b.bin", data))
		data[0] = 'X'

		blob, err := store.Open(ctx, "b.bin")
		require.NoError(t, err)
		defer blob.Close()

		all, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, "mutable", string(all))
	})

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.bin")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Put(ctx, "seg/b.bin", nil))
		require.NoError(t, s.Put(ctx, "seg/a.bin", nil))
		require.NoError(t, s.Put(ctx, "other/c.bin", nil))

		names, err := s.List(ctx, "seg/")
		require.NoError(t, err)
		assert.Equal(t, []string{"seg/a.bin", "seg/b.bin"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "d.bin", []byte("x")))
		require.NoError(t, store.Delete(ctx, "d.bin"))
		_, err := store.Open(ctx, "d.bin")
		require.ErrorIs(t, err, ErrNotFound)

		// Deleting a missing blob is not an error.
		require.NoError(t, store.Delete(ctx, "d.bin"))
	})

	t.Run("Concurrent", func(t *testing.T) {
		s := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("c-%03d.bin", i)
				_ = s.Put(ctx, name, []byte{byte(i)})
				if blob, err := s.Open(ctx, name); err == nil {
					blob.Close()
				}
			}(i)
		}
		wg.Wait()

		names, err := s.List(ctx, "c-")
		require.NoError(t, err)
		assert.Len(t, names, 16)
	})
}
