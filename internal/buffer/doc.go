// Package buffer implements the contiguous byte region that backs a string table.
//
// A Buffer grows geometrically while a table is built and is trimmed to its
// exact length when the table is frozen. Growth can be charged to a
// MemoryAcquirer (typically the resource controller); a refused reservation
// fails the append with ErrGrowth instead of allocating.
package buffer
