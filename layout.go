package strtab

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/strtab/internal/conv"
	"github.com/hupe1980/strtab/internal/fs"
	"github.com/hupe1980/strtab/internal/index"
	"github.com/hupe1980/strtab/internal/width"
)

// Serialized layout (little-endian):
//
//	format_version u8   1: u32 string_count, 2: u64 string_count
//	string_count   u32 | u64
//	offset_width   u8   1, 2, 4 or 8
//	length_width   u8   1, 2, 4 or 8
//	index          string_count × (offset, length)
//	buffer         everything after the index
const (
	formatV1     = 1
	formatV2     = 2
	headerSizeV1 = 1 + 4 + 1 + 1
	headerSizeV2 = 1 + 8 + 1 + 1
)

func (t *Table) appendHeader(b []byte) []byte {
	ow, lw := t.Widths()
	b = append(b, formatV1)
	b = binary.LittleEndian.AppendUint32(b, uint32(t.idx.Len()))
	return append(b, byte(ow), byte(lw))
}

// WriteTo writes the serialized table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, part := range [][]byte{t.appendHeader(make([]byte, 0, headerSizeV1)), t.idx.Bytes(), t.data} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// AppendBinary appends the serialized table to b.
func (t *Table) AppendBinary(b []byte) ([]byte, error) {
	b = t.appendHeader(b)
	b = append(b, t.idx.Bytes()...)
	return append(b, t.data...), nil
}

// MarshalBinary returns the serialized table.
func (t *Table) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(make([]byte, 0, t.Stats().TotalBytes()))
}

// UnmarshalBinary decodes a copy of data into t, which must be a zero Table.
func (t *Table) UnmarshalBinary(data []byte) error {
	return t.init(bytes.Clone(data))
}

// ReadFrom reads a serialized table from r until EOF into t, which must be a
// zero Table.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	return int64(len(data)), t.init(data)
}

func (t *Table) init(data []byte) error {
	idx, buf, err := parseLayout(data)
	if err != nil {
		return err
	}
	t.data, t.idx = buf, idx
	return nil
}

// Load validates a serialized table and returns a Table that views data in
// place. data must not be modified while the table is in use.
//
// Only the logging and metrics options apply.
func Load(data []byte, optFns ...Option) (*Table, error) {
	return load(data, "bytes", applyOptions(optFns))
}

func load(data []byte, source string, o options) (*Table, error) {
	start := time.Now()
	idx, buf, err := parseLayout(data)

	n := 0
	if idx != nil {
		n = idx.Len()
	}
	o.logger.LogLoad(source, n, err)
	o.metricsCollector.RecordLoad(len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return newTable(buf, idx, nil), nil
}

// parseLayout checks the header, index size, every span and the UTF-8
// validity of every string before anything is exposed.
func parseLayout(data []byte) (*index.Index, []byte, error) {
	if len(data) < 1 {
		return nil, nil, layoutError(-1, nil, "missing header")
	}

	var (
		count   uint64
		hdrSize int
	)
	switch data[0] {
	case formatV1:
		hdrSize = headerSizeV1
		if len(data) < hdrSize {
			return nil, nil, layoutError(-1, nil, "truncated header: %d bytes", len(data))
		}
		count = uint64(binary.LittleEndian.Uint32(data[1:]))
	case formatV2:
		hdrSize = headerSizeV2
		if len(data) < hdrSize {
			return nil, nil, layoutError(-1, nil, "truncated header: %d bytes", len(data))
		}
		count = binary.LittleEndian.Uint64(data[1:])
	default:
		return nil, nil, layoutError(-1, nil, "unsupported format version %d", data[0])
	}

	ow, err := width.Parse(data[hdrSize-2])
	if err != nil {
		return nil, nil, layoutError(-1, err, "offset width")
	}
	lw, err := width.Parse(data[hdrSize-1])
	if err != nil {
		return nil, nil, layoutError(-1, err, "length width")
	}
	sel := width.Selection{Offset: ow, Length: lw}

	if count > math.MaxUint32 {
		return nil, nil, layoutError(-1, nil, "string count %d exceeds id range", count)
	}
	n, err := conv.Uint64ToInt(count)
	if err != nil {
		return nil, nil, layoutError(-1, err, "string count %d", count)
	}
	idxSize, err := index.Size(n, sel)
	if err != nil || idxSize > len(data)-hdrSize {
		return nil, nil, layoutError(-1, err, "index of %d entries × %d bytes exceeds %d available bytes", n, sel.Stride(), len(data)-hdrSize)
	}

	idx, err := index.View(data[hdrSize:hdrSize+idxSize], n, sel)
	if err != nil {
		return nil, nil, layoutError(-1, err, "index")
	}
	buf := data[hdrSize+idxSize:]
	bufLen := uint64(len(buf))

	for i := range n {
		e := idx.Entry(i)
		end, err := conv.AddUint64(e.Offset, e.Length)
		if err != nil || end > bufLen {
			return nil, nil, layoutError(i, err, "span [%d, +%d) exceeds buffer of %d bytes", e.Offset, e.Length, bufLen)
		}
		if !utf8.Valid(buf[e.Offset:end]) {
			return nil, nil, layoutError(i, ErrInvalidUTF8, "invalid UTF-8")
		}
	}

	return idx, buf, nil
}

// SaveFile atomically writes the serialized table to path.
func (t *Table) SaveFile(path string) error {
	return t.saveFile(fs.Default, path)
}

func (t *Table) saveFile(fsys fs.FileSystem, path string) error {
	return fs.WriteFileAtomic(fsys, path, 0o644, func(w io.Writer) error {
		_, err := t.WriteTo(w)
		return err
	})
}
