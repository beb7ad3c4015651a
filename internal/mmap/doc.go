// Package mmap provides read-only memory-mapped files for zero-copy table loads.
//
// # Usage
//
//	m, err := mmap.Open("names.strtab")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // serialized table, viewed in place
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (hints are a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must ensure no goroutine still reads slices from Bytes after Close returns.
package mmap
