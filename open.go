package strtab

import (
	"errors"

	"github.com/hupe1980/strtab/internal/mmap"
)

// Open memory-maps a table file written by SaveFile or WriteTo. The table
// views the mapping in place; Close unmaps it.
//
// Only the logging and metrics options apply.
func Open(path string, optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)

	m, err := mmap.Open(path)
	if err != nil {
		o.logger.LogLoad(path, 0, err)
		return nil, err
	}

	t, err := load(m.Bytes(), path, o)
	if err != nil {
		return nil, errors.Join(err, m.Close())
	}

	// Lookups by id touch pages in no particular order.
	_ = m.Advise(mmap.AccessRandom)
	t.closer = m
	return t, nil
}
