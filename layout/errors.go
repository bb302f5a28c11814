package layout

import "errors"

var (
	// ErrInvalidLayout reports a (size, align) pair that violates the Layout
	// invariants.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrOverflow reports a size computation that does not fit in uintptr.
	ErrOverflow = errors.New("layout arithmetic overflow")
)
