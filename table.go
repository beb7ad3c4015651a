package strtab

import (
	"fmt"
	"io"
	"iter"
	"sync"
	"unsafe"

	"github.com/hupe1980/strtab/internal/index"
)

// Table is an immutable string table: one contiguous buffer plus a packed
// offset/length index.
//
// The zero Table is empty. A Table is safe for concurrent reads. Strings
// returned by Get alias the buffer; for tables loaded with Load or Open they
// are valid only while the source bytes (or the mapping) are.
type Table struct {
	data []byte
	idx  *index.Index

	closeOnce sync.Once
	closeErr  error
	release   func()
	closer    io.Closer
}

func newTable(data []byte, idx *index.Index, release func()) *Table {
	return &Table{data: data, idx: idx, release: release}
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

func (t *Table) entry(id StringID) (index.Entry, error) {
	if int64(id) >= int64(t.idx.Len()) {
		return index.Entry{}, fmt.Errorf("%w: id %d, table has %d strings", ErrOutOfRange, id, t.idx.Len())
	}
	return t.idx.Entry(int(id)), nil
}

// Get returns the string stored under id without copying.
func (t *Table) Get(id StringID) (string, error) {
	e, err := t.entry(id)
	if err != nil {
		return "", err
	}
	return bytesToString(t.data[e.Offset:e.End()]), nil
}

// Lookup is Get without an error: ok is false when id is out of range.
func (t *Table) Lookup(id StringID) (string, bool) {
	s, err := t.Get(id)
	return s, err == nil
}

// Bytes returns the bytes of id as a read-only view into the buffer.
// The slice's capacity ends at the string, so appending to it copies.
func (t *Table) Bytes(id StringID) ([]byte, error) {
	e, err := t.entry(id)
	if err != nil {
		return nil, err
	}
	return t.data[e.Offset:e.End():e.End()], nil
}

// CString returns the bytes of id including the NUL byte that follows it.
// It fails with ErrNotNullTerminated unless the table was built with
// WithNullTerminated (or the next buffer byte happens to be NUL).
func (t *Table) CString(id StringID) ([]byte, error) {
	e, err := t.entry(id)
	if err != nil {
		return nil, err
	}
	end := e.End()
	if end >= uint64(len(t.data)) || t.data[end] != 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotNullTerminated, id)
	}
	return t.data[e.Offset : end+1 : end+1], nil
}

// ByteRange returns the [start, end) position of id within Data.
func (t *Table) ByteRange(id StringID) (start, end int, err error) {
	e, err := t.entry(id)
	if err != nil {
		return 0, 0, err
	}
	return int(e.Offset), int(e.End()), nil
}

// Len returns the number of ids in the table.
func (t *Table) Len() int {
	return t.idx.Len()
}

// IsEmpty reports whether the table holds no strings.
func (t *Table) IsEmpty() bool {
	return t.idx.Len() == 0
}

// Data returns the raw backing buffer. It must not be modified.
func (t *Table) Data() []byte {
	return t.data
}

// All yields every (id, string) pair in ascending id order.
func (t *Table) All() iter.Seq2[StringID, string] {
	return func(yield func(StringID, string) bool) {
		for i := range t.idx.Len() {
			e := t.idx.Entry(i)
			if !yield(StringID(i), bytesToString(t.data[e.Offset:e.End()])) {
				return
			}
		}
	}
}

// Strings yields every string in ascending id order.
func (t *Table) Strings() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range t.All() {
			if !yield(s) {
				return
			}
		}
	}
}

// Contains reports whether s is stored in the table. It scans every entry.
func (t *Table) Contains(s string) bool {
	_, ok := t.Find(s)
	return ok
}

// Find returns the lowest id whose string equals s. It scans every entry.
func (t *Table) Find(s string) (StringID, bool) {
	for id, v := range t.All() {
		if v == s {
			return id, true
		}
	}
	return 0, false
}

// Widths returns the encoded offset and length widths of the index.
func (t *Table) Widths() (offset, length Width) {
	sel := t.idx.Widths()
	return sel.Offset, sel.Length
}

// Stats describes the memory footprint of a table. HeaderBytes is the size of
// the header WriteTo emits, which may differ from the header of the layout the
// table was loaded from.
type Stats struct {
	Strings     int
	BufferBytes int
	IndexBytes  int
	HeaderBytes int
	OffsetWidth Width
	LengthWidth Width
}

// TotalBytes is the serialized size of the table.
func (s Stats) TotalBytes() int {
	return s.HeaderBytes + s.IndexBytes + s.BufferBytes
}

// Stats returns the footprint of t. It is deterministic: buffer bytes plus
// N × stride index bytes plus the header.
func (t *Table) Stats() Stats {
	ow, lw := t.Widths()
	return Stats{
		Strings:     t.idx.Len(),
		BufferBytes: len(t.data),
		IndexBytes:  len(t.idx.Bytes()),
		HeaderBytes: headerSizeV1,
		OffsetWidth: ow,
		LengthWidth: lw,
	}
}

// Close releases the resources behind t: its memory reservation and, for
// tables returned by Open or LoadBlob, the mapping or blob. A table must not
// be used after Close. Close is idempotent.
func (t *Table) Close() error {
	if t == nil {
		return nil
	}
	t.closeOnce.Do(func() {
		if t.release != nil {
			t.release()
		}
		if t.closer != nil {
			t.closeErr = t.closer.Close()
		}
	})
	return t.closeErr
}
