package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/strtab/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, fmt.Sprintf("test-strtab-%d/", time.Now().UnixNano()))
	require.NoError(t, err)

	t.Run("PutAndRead", func(t *testing.T) {
		name := "test.strtab"
		data := make([]byte, 1024*1024)
		_, _ = rand.Read(data)

		require.NoError(t, store.Put(ctx, name, data))

		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, names, name)

		r, err := store.Open(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), r.Size())

		buf := make([]byte, 100)
		n, err := r.ReadAt(ctx, buf, 1024)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		assert.Equal(t, data[1024:1124], buf)

		require.NoError(t, store.Delete(ctx, name))
		require.NoError(t, r.Close())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
