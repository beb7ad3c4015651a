package width

import (
	"errors"
	"fmt"
	"math"
)

// Width is the number of bytes used to encode one offset or length.
type Width uint8

const (
	W8  Width = 1
	W16 Width = 2
	W32 Width = 4
	W64 Width = 8
)

// Tiers lists the supported widths, narrowest first.
var Tiers = [...]Width{W8, W16, W32, W64}

// ErrTooWide is returned when a value needs a wider tier than the limit allows.
var ErrTooWide = errors.New("width: value exceeds widest permitted tier")

// ErrInvalid is returned for widths outside the closed tier set.
var ErrInvalid = errors.New("width: invalid width")

// Valid reports whether w is one of the supported tiers.
func (w Width) Valid() bool {
	switch w {
	case W8, W16, W32, W64:
		return true
	default:
		return false
	}
}

// Max returns the largest value representable in w.
func (w Width) Max() uint64 {
	switch w {
	case W8:
		return math.MaxUint8
	case W16:
		return math.MaxUint16
	case W32:
		return math.MaxUint32
	case W64:
		return math.MaxUint64
	default:
		return 0
	}
}

// Bits returns the width in bits.
func (w Width) Bits() int {
	return int(w) * 8
}

func (w Width) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
	return fmt.Sprintf("u%d", w.Bits())
}

// For returns the narrowest tier that can hold v.
func For(v uint64) Width {
	for _, w := range Tiers {
		if v <= w.Max() {
			return w
		}
	}
	return W64
}

// Parse validates a width byte read from a serialized header.
func Parse(b uint8) (Width, error) {
	w := Width(b)
	if !w.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalid, b)
	}
	return w, nil
}

// Selection is the outcome of width selection for one index.
type Selection struct {
	Offset Width
	Length Width
}

// Stride is the encoded size of one (offset, length) entry.
func (s Selection) Stride() int {
	return int(s.Offset) + int(s.Length)
}

// Select picks the narrowest widths for an index over a buffer of bufferLen
// bytes whose longest string is maxLength bytes.
//
// The offset width is derived from bufferLen rather than the largest start
// offset so that every end position offset+length is representable too.
// limit caps the tiers that may be chosen; a zero limit means W64.
func Select(bufferLen, maxLength uint64, limit Width) (Selection, error) {
	if limit == 0 {
		limit = W64
	}
	if !limit.Valid() {
		return Selection{}, fmt.Errorf("%w: limit %d", ErrInvalid, uint8(limit))
	}

	sel := Selection{
		Offset: For(bufferLen),
		Length: For(maxLength),
	}
	if sel.Offset > limit {
		return Selection{}, fmt.Errorf("%w: buffer of %d bytes needs %s, limit is %s", ErrTooWide, bufferLen, sel.Offset, limit)
	}
	if sel.Length > limit {
		return Selection{}, fmt.Errorf("%w: string of %d bytes needs %s, limit is %s", ErrTooWide, maxLength, sel.Length, limit)
	}
	return sel, nil
}
