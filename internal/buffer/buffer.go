package buffer

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinGrowth is the smallest capacity allocated by a growth step.
	MinGrowth = 64
	// MaxSize is the default upper bound of a buffer in bytes.
	MaxSize = math.MaxInt
)

var (
	// ErrGrowth is returned when the buffer cannot grow to hold more bytes.
	ErrGrowth = errors.New("buffer: growth refused")
	// ErrReleased is returned when a trimmed or released buffer is used.
	ErrReleased = errors.New("buffer: released")
)

// MemoryAcquirer reserves memory before the buffer allocates it.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithMemoryAcquirer charges every growth step to acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(b *Buffer) {
		b.acquirer = acquirer
	}
}

// WithMaxSize caps the buffer length in bytes.
func WithMaxSize(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.maxSize = n
		}
	}
}

// Buffer is an append-only byte region.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data     []byte
	reserved int64
	maxSize  int
	acquirer MemoryAcquirer
	released bool
}

// New creates a buffer with room for capacityHint bytes.
func New(capacityHint int, opts ...Option) (*Buffer, error) {
	b := &Buffer{maxSize: MaxSize}
	for _, opt := range opts {
		opt(b)
	}

	if capacityHint > 0 {
		if err := b.grow(min(capacityHint, b.maxSize)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Grow ensures the next n bytes can be appended without further allocation.
func (b *Buffer) Grow(n int) error {
	if b.released {
		return ErrReleased
	}
	if n < 0 || n > b.maxSize-len(b.data) {
		return fmt.Errorf("%w: %d + %d bytes exceeds max size %d", ErrGrowth, len(b.data), n, b.maxSize)
	}
	if need := len(b.data) + n; need > cap(b.data) {
		return b.grow(need)
	}
	return nil
}

// Append copies p to the end of the buffer and returns its start offset.
func (b *Buffer) Append(p []byte) (uint64, error) {
	if err := b.Grow(len(p)); err != nil {
		return 0, err
	}
	start := len(b.data)
	b.data = append(b.data, p...)
	return uint64(start), nil
}

// AppendString is Append for string input without an intermediate copy.
func (b *Buffer) AppendString(s string) (uint64, error) {
	if err := b.Grow(len(s)); err != nil {
		return 0, err
	}
	start := len(b.data)
	b.data = append(b.data, s...)
	return uint64(start), nil
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.Grow(1); err != nil {
		return err
	}
	b.data = append(b.data, c)
	return nil
}

// grow reallocates so that cap >= need, doubling the current capacity.
func (b *Buffer) grow(need int) error {
	newCap := max(cap(b.data)*2, MinGrowth, need)
	if cap(b.data) > b.maxSize/2 || newCap > b.maxSize {
		newCap = b.maxSize
	}
	if newCap < need {
		return fmt.Errorf("%w: need %d bytes, max size %d", ErrGrowth, need, b.maxSize)
	}

	delta := int64(newCap - cap(b.data))
	if b.acquirer != nil {
		if err := b.acquirer.AcquireMemory(delta); err != nil {
			return fmt.Errorf("%w: reserve %d bytes: %w", ErrGrowth, delta, err)
		}
	}
	b.reserved += delta

	data := make([]byte, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
	return nil
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Reserved returns the bytes currently charged to the memory acquirer.
func (b *Buffer) Reserved() int64 {
	return b.reserved
}

// Bytes returns the written bytes. The slice aliases the buffer and is only
// valid until the next Append.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Trim hands the written bytes to the caller in an allocation of exactly Len
// bytes. The slack reservation is returned to the acquirer while Len bytes
// stay charged; the caller releases them through the returned func.
// The buffer is unusable afterwards.
func (b *Buffer) Trim() ([]byte, func()) {
	data := b.data
	if cap(data) != len(data) {
		data = make([]byte, len(b.data))
		copy(data, b.data)
	}

	keep := int64(len(data))
	if b.acquirer != nil && b.reserved > keep {
		b.acquirer.ReleaseMemory(b.reserved - keep)
	}

	acquirer := b.acquirer
	b.data = nil
	b.reserved = 0
	b.released = true

	release := func() {}
	if acquirer != nil && keep > 0 {
		var done bool
		release = func() {
			if done {
				return
			}
			done = true
			acquirer.ReleaseMemory(keep)
		}
	}
	return data, release
}

// Release drops the buffer and returns its reservation.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	if b.acquirer != nil && b.reserved > 0 {
		b.acquirer.ReleaseMemory(b.reserved)
	}
	b.data = nil
	b.reserved = 0
	b.released = true
}
