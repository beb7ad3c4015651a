// Package strtab provides a compact, immutable string table for Go.
//
// A table stores every string back to back in one contiguous buffer and
// addresses them through a packed index of (offset, length) pairs. Each
// string gets a dense uint32 id in insertion order. The index uses the
// narrowest unsigned width (1, 2, 4 or 8 bytes) that fits the buffer size
// and the longest string, so small tables cost a few bytes per entry.
//
// # Building
//
//	b := strtab.NewBuilder(strtab.WithDedup())
//	idCat, _ := b.Insert("cat")
//	idDog, _ := b.Insert("dog")
//	again, _ := b.Insert("cat") // again == idCat
//	t, err := b.Finalize()
//
// Finalize selects the index widths, trims the buffer to its exact size and
// drops the dedup lookup. The builder is unusable afterwards.
//
// # Reading
//
// Lookups are O(1) and never copy:
//
//	s, err := t.Get(idDog)       // "dog"
//	for id, s := range t.All() { // ascending id order
//	    fmt.Println(id, s)
//	}
//
// A Table is safe for concurrent reads.
//
// # Serialization
//
// The layout is a small little-endian header, the index, then the buffer:
//
//	data, _ := t.MarshalBinary()
//	view, err := strtab.Load(data) // validates, then views data in place
//
// Open memory-maps a file written by SaveFile. Save and LoadBlob write
// tables to any blobstore.BlobStore (local disk, memory, S3, MinIO),
// optionally compressed with LZ4 or Zstandard inside a checksummed envelope.
// Publish and OpenCurrent maintain a sequence of tables with a CURRENT
// pointer.
//
// # Resource Limits
//
// WithMemoryLimit and WithResourceController bound the buffer memory of one
// or many builders. Exceeding the limit fails the insert with
// ErrAllocationFailure and leaves the builder usable.
package strtab
