package strtab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/strtab/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveFile_Faults(t *testing.T) {
	tbl, err := FromStrings([]string{"new", "content"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"Write", fs.Fault{FailAfterBytes: 4}},
		{"Sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"Close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"Rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "table.strtab")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

			faulty := fs.NewFaultyFS(nil)
			faulty.AddRule("table.strtab", tt.fault)

			err := tbl.saveFile(faulty, path)
			require.ErrorIs(t, err, fs.ErrInjected)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "old", string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file left behind")
		})
	}
}

func TestParseLayout_DoesNotCopy(t *testing.T) {
	data := []byte{1, 1, 0, 0, 0, 1, 1, 0, 2, 'o', 'k'}
	idx, buf, err := parseLayout(data)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.True(t, &buf[0] == &data[9])
}
