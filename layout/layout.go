package layout

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/alexhholmes/memlayout/internal/checked"
)

// MaxSize is the largest size representable on this platform.
const MaxSize = ^uintptr(0)

// Layout describes the size and alignment of a value in memory.
type Layout struct {
	size uintptr
	// alignMask is align-1, so the zero Layout has alignment 1.
	alignMask uintptr
}

// FromSizeAlign returns the Layout for size bytes aligned to align.
// align must be a non-zero power of two, and size rounded up to align must
// not overflow uintptr.
func FromSizeAlign(size, align uintptr) (Layout, error) {
	if !checked.IsPowerOfTwo(align) {
		return Layout{}, fmt.Errorf("%w: align %d is not a power of two", ErrInvalidLayout, align)
	}
	if size > MaxSize-(align-1) {
		return Layout{}, fmt.Errorf("%w: size %d overflows when rounded to align %d",
			ErrInvalidLayout, size, align)
	}
	return Layout{size: size, alignMask: align - 1}, nil
}

// Of returns the Layout of the Go type T.
func Of[T any]() (Layout, error) {
	var zero T
	return FromSizeAlign(unsafe.Sizeof(zero), unsafe.Alignof(zero))
}

// FromType returns the Layout of a runtime type descriptor.
func FromType(t reflect.Type) (Layout, error) {
	if t == nil {
		return Layout{}, fmt.Errorf("%w: nil type", ErrInvalidLayout)
	}
	return FromSizeAlign(t.Size(), uintptr(t.Align()))
}

// Size returns the size in bytes.
func (l Layout) Size() uintptr {
	return l.size
}

// Align returns the alignment in bytes.
func (l Layout) Align() uintptr {
	return l.alignMask + 1
}

// DanglingAddr returns a non-zero address aligned for l. It is a placeholder
// for zero-sized allocations and must never be dereferenced.
func (l Layout) DanglingAddr() uintptr {
	return l.Align()
}

// AlignTo returns a Layout with the same size and alignment raised to at
// least align.
func (l Layout) AlignTo(align uintptr) (Layout, error) {
	return FromSizeAlign(l.size, max(l.Align(), align))
}

// RequiredPadding returns the number of bytes to append to l so its size is
// a multiple of align. align must be a power of two.
func (l Layout) RequiredPadding(align uintptr) uintptr {
	// (size + align - 1) &^ (align - 1); cannot wrap for a valid Layout.
	mask := checked.WrappingSub(align, 1)
	rounded := checked.WrappingSub(checked.WrappingAdd(l.size, align), 1) &^ mask
	return checked.WrappingSub(rounded, l.size)
}

// PadToAlign returns l with its size rounded up to a multiple of its
// alignment.
func (l Layout) PadToAlign() Layout {
	// Invariant 2 guarantees the rounded size is still valid.
	return Layout{
		size:      l.size + l.RequiredPadding(l.Align()),
		alignMask: l.alignMask,
	}
}

// String renders l for diagnostics.
func (l Layout) String() string {
	return "<Layout| size:" + strconv.FormatUint(uint64(l.size), 10) +
		", align:" + strconv.FormatUint(uint64(l.Align()), 10) + ">"
}
