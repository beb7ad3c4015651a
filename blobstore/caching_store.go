package blobstore

import (
	"context"
	"errors"

	"github.com/hupe1980/strtab/internal/cache"
	"github.com/hupe1980/strtab/internal/resource"
)

// CachingStore wraps a remote BlobStore and keeps recently opened blobs in
// memory. Blobs it returns are Mappable, so tables loaded through it view
// the cached bytes without another copy.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU
}

// NewCachingStore caches up to capacity bytes of inner's blobs. If rc is
// non-nil, cached bytes count against its memory limit.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity, rc),
	}
}

// Open serves name from the cache, fetching the whole blob on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}

	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := ReadAll(ctx, b)
	if _, mapped := b.(Mappable); mapped && err == nil {
		// The mapping dies with b.
		data = append([]byte(nil), data...)
	}
	if err = errors.Join(err, b.Close()); err != nil {
		return nil, err
	}

	s.cache.Set(name, data)
	return &memoryBlob{data: data}, nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached copy and deletes through.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List is passed through uncached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
