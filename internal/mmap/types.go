package mmap

import "errors"

// AccessPattern is a hint to the kernel about how mapped data will be read.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be read front to back, as a full scan does.
	AccessSequential
	// AccessRandom expects point lookups by id.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the mapping.
	AccessWillNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
