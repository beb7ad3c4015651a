package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blobstore: blob not found")

// ErrExists is returned by PutIfNotExists when the name is already taken.
var ErrExists = errors.New("blobstore: blob already exists")

// ErrInvalidName is returned for names that are empty or escape the store root.
var ErrInvalidName = errors.New("blobstore: invalid blob name")

// BlobStore is a flat namespace of immutable blobs. Names use forward
// slashes ("tables/000001.strtab").
//
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading. Missing blobs fail with ErrNotFound.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes data under name. Readers see either the old or the new blob.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalStore is implemented by stores that can create a blob only if
// the name is still free.
type ConditionalStore interface {
	BlobStore
	// PutIfNotExists writes data under name or fails with ErrExists.
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	// ReadAt reads len(p) bytes at off. Like io.ReaderAt it returns io.EOF
	// when fewer bytes are available.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs whose content is already in memory.
type Mappable interface {
	// Bytes returns the content without copying. The slice is valid until
	// the Blob is closed and must not be modified.
	Bytes() ([]byte, error)
}

// ReadAll returns the whole content of b. Mappable blobs return their
// bytes without copying.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}

	size := b.Size()
	if size < 0 || uint64(size) > uint64(maxInt) {
		return nil, fmt.Errorf("blobstore: blob of %d bytes does not fit in memory", size)
	}
	p := make([]byte, size)
	if size == 0 {
		return p, nil
	}
	n, err := b.ReadAt(ctx, p, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return nil, err
	}
	if int64(n) != size {
		return nil, io.ErrUnexpectedEOF
	}
	return p, nil
}

const maxInt = int(^uint(0) >> 1)

// readAtBytes implements Blob.ReadAt over an in-memory slice.
func readAtBytes(data, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
