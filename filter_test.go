package strtab_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/strtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Filter(t *testing.T) {
	tbl := newTable(t, "apple", "banana", "apricot", "cherry", "avocado")

	ids := tbl.FilterPrefix("ap")
	assert.Equal(t, []uint32{0, 2}, ids.ToArray())

	long := tbl.Filter(func(_ strtab.StringID, s string) bool { return len(s) > 6 })
	assert.Equal(t, []uint32{2, 4}, long.ToArray())

	assert.True(t, tbl.FilterPrefix("z").IsEmpty())
}

func TestTable_Subset(t *testing.T) {
	tbl := newTable(t, "apple", "banana", "apricot", "cherry", "avocado")

	sub, err := tbl.Subset(tbl.Filter(func(_ strtab.StringID, s string) bool {
		return strings.HasPrefix(s, "a")
	}))
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"apple", "apricot", "avocado"}, slices.Collect(sub.Strings()))
	assert.Equal(t, len("appleapricotavocado"), sub.Stats().BufferBytes)

	// Old id 2 has rank 2 within the bitmap.
	ids := roaring.BitmapOf(0, 2, 4)
	s, err := sub.Get(strtab.StringID(ids.Rank(2) - 1))
	require.NoError(t, err)
	assert.Equal(t, "apricot", s)
}

func TestTable_SubsetDedup(t *testing.T) {
	tbl := newTable(t, "x", "y", "x", "z")

	sub, err := tbl.Subset(roaring.BitmapOf(0, 2, 3), strtab.WithDedup())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "z"}, slices.Collect(sub.Strings()))
}

func TestTable_SubsetOutOfRange(t *testing.T) {
	tbl := newTable(t, "a", "b")

	_, err := tbl.Subset(roaring.BitmapOf(1, 2))
	assert.ErrorIs(t, err, strtab.ErrOutOfRange)

	empty, err := tbl.Subset(roaring.New())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}
