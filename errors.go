package strtab

import (
	"errors"
	"fmt"

	"github.com/hupe1980/strtab/internal/buffer"
	"github.com/hupe1980/strtab/internal/conv"
	"github.com/hupe1980/strtab/internal/width"
)

var (
	// ErrAllocationFailure is returned when the backing buffer cannot grow,
	// either because the memory limit refused the reservation or the size
	// overflowed.
	ErrAllocationFailure = errors.New("strtab: allocation failure")

	// ErrCapacityExceeded is returned when a table needs more strings or wider
	// widths than permitted.
	ErrCapacityExceeded = errors.New("strtab: capacity exceeded")

	// ErrOutOfRange is returned for ids >= Len().
	ErrOutOfRange = errors.New("strtab: id out of range")

	// ErrMalformedLayout is returned when serialized bytes fail validation.
	ErrMalformedLayout = errors.New("strtab: malformed layout")

	// ErrFinalized is returned by every Builder method after Finalize.
	ErrFinalized = errors.New("strtab: builder already finalized")

	// ErrInvalidUTF8 is returned when inserting bytes that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("strtab: invalid UTF-8")

	// ErrNotNullTerminated is returned by CString when the string is not
	// followed by a NUL byte in the buffer.
	ErrNotNullTerminated = errors.New("strtab: string is not NUL-terminated")
)

// CapacityError reports which limit a table exceeded.
//
// It matches ErrCapacityExceeded with errors.Is; the underlying error (if any)
// can be accessed via errors.Unwrap.
type CapacityError struct {
	// Resource is "strings", "bytes", "offset width" or "length width".
	Resource string
	// Needed is the count or byte value that did not fit.
	Needed uint64
	// Limit is the largest value permitted.
	Limit uint64
	cause error
}

func (e *CapacityError) Error() string {
	if e.Needed == 0 && e.Limit == 0 && e.cause != nil {
		return "strtab: capacity exceeded: " + e.cause.Error()
	}
	return fmt.Sprintf("strtab: capacity exceeded: %s needs %d, limit %d", e.Resource, e.Needed, e.Limit)
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

func (e *CapacityError) Unwrap() error { return e.cause }

// LayoutError describes why serialized bytes were rejected.
//
// It matches ErrMalformedLayout with errors.Is.
type LayoutError struct {
	// Entry is the index entry that failed validation, or -1 for header and
	// size errors.
	Entry  int
	Reason string
	cause  error
}

func (e *LayoutError) Error() string {
	if e.Entry < 0 {
		return "strtab: malformed layout: " + e.Reason
	}
	return fmt.Sprintf("strtab: malformed layout: entry %d: %s", e.Entry, e.Reason)
}

func (e *LayoutError) Is(target error) bool { return target == ErrMalformedLayout }

func (e *LayoutError) Unwrap() error { return e.cause }

func layoutError(entry int, cause error, format string, args ...any) *LayoutError {
	return &LayoutError{Entry: entry, Reason: fmt.Sprintf(format, args...), cause: cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already public.
	var ce *CapacityError
	if errors.As(err, &ce) {
		return err
	}
	var le *LayoutError
	if errors.As(err, &le) {
		return err
	}

	if errors.Is(err, buffer.ErrGrowth) {
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	if errors.Is(err, buffer.ErrReleased) {
		return fmt.Errorf("%w: %w", ErrFinalized, err)
	}
	if errors.Is(err, width.ErrTooWide) {
		return &CapacityError{Resource: "width", cause: err}
	}
	if errors.Is(err, conv.ErrOverflow) {
		return &CapacityError{Resource: "size", cause: err}
	}

	return err
}
