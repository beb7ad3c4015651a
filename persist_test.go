package strtab_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/strtab"
	"github.com/hupe1980/strtab/blobstore"
	"github.com/hupe1980/strtab/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadBlob(t *testing.T) {
	ctx := context.Background()
	tbl := corpus(t)

	stores := map[string]func(t *testing.T) blobstore.BlobStore{
		"Memory": func(*testing.T) blobstore.BlobStore { return blobstore.NewMemoryStore() },
		"Local":  func(t *testing.T) blobstore.BlobStore { return blobstore.NewLocalStore(t.TempDir()) },
		"Caching": func(*testing.T) blobstore.BlobStore {
			return blobstore.NewCachingStore(blobstore.NewMemoryStore(), 1<<20, nil)
		},
	}
	codecs := []strtab.Compression{
		strtab.CompressionRaw,
		strtab.CompressionNone,
		strtab.CompressionLZ4,
		strtab.CompressionZSTD,
	}

	for storeName, newStore := range stores {
		for _, c := range codecs {
			t.Run(fmt.Sprintf("%s/%s", storeName, c), func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, strtab.Save(ctx, store, "tables/t.strtab", tbl, strtab.WithCompression(c)))

				loaded, err := strtab.LoadBlob(ctx, store, "tables/t.strtab")
				require.NoError(t, err)
				assertSameStrings(t, tbl, loaded)
				require.NoError(t, loaded.Close())
			})
		}
	}
}

func TestSave_CompressesRepetitiveTables(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	words := make([]string, 2000)
	for i := range words {
		words[i] = strings.Repeat("log-field-", 3)
	}
	tbl := newTable(t, words...)

	require.NoError(t, strtab.Save(ctx, store, "raw", tbl))
	require.NoError(t, strtab.Save(ctx, store, "zstd", tbl, strtab.WithCompression(strtab.CompressionZSTD)))

	size := func(name string) int64 {
		b, err := store.Open(ctx, name)
		require.NoError(t, err)
		defer b.Close()
		return b.Size()
	}
	assert.Less(t, size("zstd"), size("raw")/4)
}

func TestLoadBlob_Errors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := strtab.LoadBlob(ctx, store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	tbl := newTable(t, "a", "b", "c")
	require.NoError(t, strtab.Save(ctx, store, "lz4", tbl, strtab.WithCompression(strtab.CompressionLZ4)))

	b, err := store.Open(ctx, "lz4")
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, b)
	require.NoError(t, err)

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xff
	require.NoError(t, store.Put(ctx, "corrupt", corrupt))
	_, err = strtab.LoadBlob(ctx, store, "corrupt")
	assert.ErrorIs(t, err, strtab.ErrMalformedLayout)

	// Envelope headers declaring an impossible decoded size.
	for _, codec := range []byte{1, 2} {
		forged := append([]byte("STZ1"), codec, 0, 0, 0, 0)
		forged = binary.LittleEndian.AppendUint64(forged, 1<<62)
		forged = append(forged, 0x28, 0xb5, 0x2f, 0xfd)
		require.NoError(t, store.Put(ctx, "forged", forged))

		_, err = strtab.LoadBlob(ctx, store, "forged")
		assert.ErrorIs(t, err, strtab.ErrMalformedLayout)
	}

	require.NoError(t, store.Put(ctx, "garbage", []byte{7, 7, 7}))
	_, err = strtab.LoadBlob(ctx, store, "garbage")
	assert.ErrorIs(t, err, strtab.ErrMalformedLayout)
}

func TestLoadBlob_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	tbl := newTable(t, strings.Repeat("a", 4096))
	require.NoError(t, strtab.Save(ctx, store, "big", tbl, strtab.WithCompression(strtab.CompressionZSTD)))

	_, err := strtab.LoadBlob(ctx, store, "big", strtab.WithMemoryLimit(1024))
	assert.ErrorIs(t, err, strtab.ErrAllocationFailure)

	loaded, err := strtab.LoadBlob(ctx, store, "big", strtab.WithMemoryLimit(1<<20))
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestSaveAll(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rng := testutil.NewRNG(3)

	tables := make(map[string]*strtab.Table)
	for i := range 10 {
		tables[fmt.Sprintf("shard-%02d.strtab", i)] = newTable(t, rng.Strings(100, 1, 16)...)
	}

	metrics := &strtab.BasicMetricsCollector{}
	rc := strtab.NewResourceController(strtab.ResourceConfig{
		MaxConcurrentUploads: 3,
		IOLimitBytesPerSec:   1 << 30,
	})
	err := strtab.SaveAll(ctx, store, tables,
		strtab.WithCompression(strtab.CompressionLZ4),
		func(o *strtab.SaveOptions) {
			o.Resources = rc
			o.MetricsCollector = metrics
		},
	)
	require.NoError(t, err)

	names, err := store.List(ctx, "shard-")
	require.NoError(t, err)
	assert.Len(t, names, 10)

	for name, want := range tables {
		got, err := strtab.LoadBlob(ctx, store, name)
		require.NoError(t, err)
		assertSameStrings(t, want, got)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(10), stats.PersistCount)
	assert.Equal(t, int64(0), stats.PersistErrors)
}

func TestSave_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := strtab.NewResourceController(strtab.ResourceConfig{MaxConcurrentUploads: 1})
	require.True(t, rc.TryAcquireUpload())
	defer rc.ReleaseUpload()

	err := strtab.Save(ctx, blobstore.NewMemoryStore(), "x", newTable(t, "a"), func(o *strtab.SaveOptions) {
		o.Resources = rc
	})
	assert.ErrorIs(t, err, context.Canceled)
}
