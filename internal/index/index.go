package index

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/strtab/internal/conv"
	"github.com/hupe1980/strtab/internal/width"
)

var (
	// ErrSize is returned when index bytes do not match count × stride.
	ErrSize = errors.New("index: size mismatch")
	// ErrValueTooLarge is returned when an entry does not fit the selected widths.
	ErrValueTooLarge = errors.New("index: value too large for width")
)

// Entry locates one string inside the backing buffer.
type Entry struct {
	Offset uint64
	Length uint64
}

// End returns the exclusive end position of the entry.
func (e Entry) End() uint64 {
	return e.Offset + e.Length
}

type (
	readFunc  func([]byte) uint64
	writeFunc func([]byte, uint64)
)

func reader(w width.Width) readFunc {
	switch w {
	case width.W8:
		return func(b []byte) uint64 { return uint64(b[0]) }
	case width.W16:
		return func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint16(b)) }
	case width.W32:
		return func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint32(b)) }
	default:
		return binary.LittleEndian.Uint64
	}
}

func writer(w width.Width) writeFunc {
	switch w {
	case width.W8:
		return func(b []byte, v uint64) { b[0] = byte(v) }
	case width.W16:
		return func(b []byte, v uint64) { binary.LittleEndian.PutUint16(b, uint16(v)) }
	case width.W32:
		return func(b []byte, v uint64) { binary.LittleEndian.PutUint32(b, uint32(v)) }
	default:
		return binary.LittleEndian.PutUint64
	}
}

// Index is a packed array of (offset, length) pairs, little-endian and
// interleaved, all encoded with the same pair of widths.
//
// An Index is immutable and safe for concurrent use.
type Index struct {
	data    []byte
	n       int
	sel     width.Selection
	stride  int
	readOff readFunc
	readLen readFunc
}

// Size returns the encoded size of n entries using sel.
func Size(n int, sel width.Selection) (int, error) {
	return conv.MulInt(n, sel.Stride())
}

func newIndex(data []byte, n int, sel width.Selection) *Index {
	return &Index{
		data:    data,
		n:       n,
		sel:     sel,
		stride:  sel.Stride(),
		readOff: reader(sel.Offset),
		readLen: reader(sel.Length),
	}
}

// Encode packs entries with the widths in sel.
func Encode(entries []Entry, sel width.Selection) (*Index, error) {
	if !sel.Offset.Valid() || !sel.Length.Valid() {
		return nil, fmt.Errorf("%w: %s/%s", width.ErrInvalid, sel.Offset, sel.Length)
	}

	size, err := Size(len(entries), sel)
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	putOff, putLen := writer(sel.Offset), writer(sel.Length)
	maxOff, maxLen := sel.Offset.Max(), sel.Length.Max()
	ow, stride := int(sel.Offset), sel.Stride()

	for i, e := range entries {
		if e.Offset > maxOff || e.Length > maxLen {
			return nil, fmt.Errorf("%w: entry %d (%d, %d) with %s/%s", ErrValueTooLarge, i, e.Offset, e.Length, sel.Offset, sel.Length)
		}
		pos := i * stride
		putOff(data[pos:], e.Offset)
		putLen(data[pos+ow:], e.Length)
	}

	return newIndex(data, len(entries), sel), nil
}

// View wraps already encoded index bytes without copying.
func View(data []byte, n int, sel width.Selection) (*Index, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrSize, n)
	}
	if !sel.Offset.Valid() || !sel.Length.Valid() {
		return nil, fmt.Errorf("%w: %s/%s", width.ErrInvalid, sel.Offset, sel.Length)
	}

	size, err := Size(n, sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSize, err)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSize, len(data), size)
	}

	return newIndex(data, n, sel), nil
}

// Entry returns the i-th entry. i must be in [0, Len()).
func (x *Index) Entry(i int) Entry {
	pos := i * x.stride
	return Entry{
		Offset: x.readOff(x.data[pos:]),
		Length: x.readLen(x.data[pos+int(x.sel.Offset):]),
	}
}

// Len returns the number of entries. A nil Index is empty.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.n
}

// Stride returns the encoded size of one entry.
func (x *Index) Stride() int {
	return x.Widths().Stride()
}

// Bytes returns the encoded index.
func (x *Index) Bytes() []byte {
	if x == nil {
		return nil
	}
	return x.data
}

// Widths returns the offset and length widths. A nil Index reports the
// narrowest tier for both.
func (x *Index) Widths() width.Selection {
	if x == nil {
		return width.Selection{Offset: width.W8, Length: width.W8}
	}
	return x.sel
}
