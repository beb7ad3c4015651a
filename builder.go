package strtab

import (
	"iter"
	"math"
	"slices"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/hupe1980/strtab/internal/buffer"
	"github.com/hupe1980/strtab/internal/dedup"
	"github.com/hupe1980/strtab/internal/index"
	"github.com/hupe1980/strtab/internal/width"
)

// MaxStrings is the largest number of strings a table can hold.
const MaxStrings = math.MaxUint32

// StringID identifies a string within one table. Ids are dense and assigned
// in insertion order starting at zero.
type StringID uint32

// Builder accumulates strings and produces an immutable Table.
//
// A Builder is single-use and not safe for concurrent use. After Finalize,
// Insert, InsertBytes, Extend and Finalize return ErrFinalized, while Len,
// BytesLen and Reserved report 0.
type Builder struct {
	opts      options
	buf       *buffer.Buffer
	entries   []index.Entry
	lookup    *dedup.Lookup
	maxLength uint64
	finalized bool
	initErr   error
}

// NewBuilder creates an empty builder.
//
// Example:
//
//	b := strtab.NewBuilder(strtab.WithCountHint(len(names)), strtab.WithDedup())
//	for _, name := range names {
//	    id, _ := b.Insert(name)
//	    ids = append(ids, id)
//	}
//	t, err := b.Finalize()
func NewBuilder(optFns ...Option) *Builder {
	b := &Builder{opts: applyOptions(optFns)}

	bufOpts := []buffer.Option{}
	if b.opts.resources != nil {
		bufOpts = append(bufOpts, buffer.WithMemoryAcquirer(b.opts.resources))
	}
	if b.opts.maxBytes > 0 {
		bufOpts = append(bufOpts, buffer.WithMaxSize(b.opts.maxBytes))
	}
	b.buf, b.initErr = buffer.New(b.opts.byteHint, bufOpts...)
	if b.initErr != nil {
		b.initErr = translateError(b.initErr)
	}

	if b.opts.countHint > 0 {
		b.entries = make([]index.Entry, 0, b.opts.countHint)
	}
	if b.opts.dedup {
		b.lookup = dedup.New(b.opts.countHint)
	}
	return b
}

// Insert appends s and returns its id. With dedup enabled, a string equal to
// an earlier one returns the earlier id and stores nothing.
func (b *Builder) Insert(s string) (StringID, error) {
	if b.finalized {
		return 0, ErrFinalized
	}
	if b.initErr != nil {
		return 0, b.initErr
	}
	if !utf8.ValidString(s) {
		return 0, ErrInvalidUTF8
	}

	if b.lookup != nil {
		data := b.buf.Bytes()
		id, ok := b.lookup.Find(s, func(id uint32) bool {
			e := b.entries[id]
			return string(data[e.Offset:e.End()]) == s
		})
		if ok {
			b.opts.metricsCollector.RecordInsert(len(s), true)
			return StringID(id), nil
		}
	}

	if uint64(len(b.entries)) >= MaxStrings {
		return 0, &CapacityError{Resource: "strings", Needed: uint64(len(b.entries)) + 1, Limit: MaxStrings}
	}

	size := len(s)
	if b.opts.nullTerminated {
		size++
	}
	if err := b.buf.Grow(size); err != nil {
		if limit := b.opts.maxBytes; limit > 0 && size > limit-b.buf.Len() {
			return 0, &CapacityError{Resource: "bytes", Needed: uint64(b.buf.Len()) + uint64(size), Limit: uint64(limit), cause: err}
		}
		return 0, translateError(err)
	}

	// Cannot fail after Grow.
	off, _ := b.buf.AppendString(s)
	if b.opts.nullTerminated {
		_ = b.buf.AppendByte(0)
	}

	id := uint32(len(b.entries))
	b.entries = append(b.entries, index.Entry{Offset: off, Length: uint64(len(s))})
	b.maxLength = max(b.maxLength, uint64(len(s)))
	if b.lookup != nil {
		b.lookup.Add(s, id)
	}

	b.opts.metricsCollector.RecordInsert(len(s), false)
	return StringID(id), nil
}

// InsertBytes is Insert for a byte slice. p is copied; the builder does not
// retain it.
func (b *Builder) InsertBytes(p []byte) (StringID, error) {
	return b.Insert(unsafe.String(unsafe.SliceData(p), len(p)))
}

// Extend inserts every string of seq in order, stopping at the first error.
func (b *Builder) Extend(seq iter.Seq[string]) error {
	for s := range seq {
		if _, err := b.Insert(s); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of ids assigned so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// BytesLen returns the number of content bytes stored so far, including NUL
// terminators.
func (b *Builder) BytesLen() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

// Reserved returns the bytes allocated for the buffer so far, growth slack
// included. With a memory limit, this is what the builder holds against it.
func (b *Builder) Reserved() int64 {
	if b.buf == nil {
		return 0
	}
	return b.buf.Reserved()
}

// Finalize freezes the builder into a Table. Widths are selected from the
// final buffer size and the longest string; the buffer is trimmed to its exact
// length and the dedup lookup is dropped.
//
// Finalize consumes the builder even if it fails.
func (b *Builder) Finalize() (*Table, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true
	if b.initErr != nil {
		return nil, b.initErr
	}

	start := time.Now()
	n, bufLen := len(b.entries), b.buf.Len()

	t, err := b.finalize()
	if err != nil {
		b.buf.Release()
	}
	b.entries = nil
	b.lookup = nil

	var ow, lw Width
	if t != nil {
		ow, lw = t.Widths()
	}
	b.opts.logger.LogFinalize(n, bufLen, ow, lw, err)
	b.opts.metricsCollector.RecordFinalize(n, bufLen, time.Since(start), err)
	return t, err
}

func (b *Builder) finalize() (*Table, error) {
	bufLen := uint64(b.buf.Len())
	limit := b.opts.maxWidth

	sel, err := width.Select(bufLen, b.maxLength, limit)
	if err != nil {
		if limit.Valid() {
			if width.For(bufLen) > limit {
				return nil, &CapacityError{Resource: "offset width", Needed: bufLen, Limit: limit.Max(), cause: err}
			}
			return nil, &CapacityError{Resource: "length width", Needed: b.maxLength, Limit: limit.Max(), cause: err}
		}
		return nil, translateError(err)
	}

	idx, err := index.Encode(b.entries, sel)
	if err != nil {
		return nil, translateError(err)
	}

	data, release := b.buf.Trim()
	return newTable(data, idx, release), nil
}

// FromStrings builds a table from ss with exact count and byte hints.
func FromStrings(ss []string, optFns ...Option) (*Table, error) {
	total := 0
	for _, s := range ss {
		total += len(s)
	}
	if applyOptions(optFns).nullTerminated {
		total += len(ss)
	}

	b := NewBuilder(slices.Concat(optFns, []Option{WithCountHint(len(ss)), WithByteHint(total)})...)
	for _, s := range ss {
		if _, err := b.Insert(s); err != nil {
			b.discard()
			return nil, err
		}
	}
	return b.Finalize()
}

// discard finalizes the builder without producing a table.
func (b *Builder) discard() {
	b.finalized = true
	if b.buf != nil {
		b.buf.Release()
	}
	b.entries = nil
	b.lookup = nil
}
