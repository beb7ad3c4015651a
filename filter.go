package strtab

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Filter returns the ids of every string for which keep returns true.
func (t *Table) Filter(keep func(id StringID, s string) bool) *roaring.Bitmap {
	ids := roaring.New()
	for id, s := range t.All() {
		if keep(id, s) {
			ids.Add(uint32(id))
		}
	}
	return ids
}

// FilterPrefix returns the ids of every string starting with prefix.
func (t *Table) FilterPrefix(prefix string) *roaring.Bitmap {
	return t.Filter(func(_ StringID, s string) bool {
		return strings.HasPrefix(s, prefix)
	})
}

// Subset builds a new table holding the strings of ids in ascending id order.
// The string stored under old id x gets the new id ids.Rank(x)-1.
//
// optFns configure the new builder; WithDedup, for example, collapses
// duplicates the source table stored separately (which changes the rank rule).
func (t *Table) Subset(ids *roaring.Bitmap, optFns ...Option) (*Table, error) {
	if !ids.IsEmpty() && int64(ids.Maximum()) >= int64(t.Len()) {
		return nil, fmt.Errorf("%w: id %d, table has %d strings", ErrOutOfRange, ids.Maximum(), t.Len())
	}

	total := 0
	it := ids.Iterator()
	for it.HasNext() {
		e := t.idx.Entry(int(it.Next()))
		total += int(e.Length) + 1
	}

	opts := append([]Option{WithCountHint(int(ids.GetCardinality())), WithByteHint(total)}, optFns...)
	b := NewBuilder(opts...)

	it = ids.Iterator()
	for it.HasNext() {
		s, err := t.Get(StringID(it.Next()))
		if err != nil {
			b.discard()
			return nil, err
		}
		if _, err := b.Insert(s); err != nil {
			b.discard()
			return nil, err
		}
	}
	return b.Finalize()
}
