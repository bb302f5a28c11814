package layout

import (
	"fmt"

	"github.com/alexhholmes/memlayout/internal/checked"
)

// Extend returns the Layout of l followed by next, with padding inserted so
// next starts at a multiple of its alignment, and the offset of next.
// The result is not padded to its own alignment; call PadToAlign for that.
func (l Layout) Extend(next Layout) (Layout, uintptr, error) {
	newAlign := max(l.Align(), next.Align())
	padding := l.RequiredPadding(newAlign)

	offset, ok := checked.CheckedAdd(l.size, padding)
	if !ok {
		return Layout{}, 0, fmt.Errorf("%w: extend %s with %s", ErrOverflow, l, next)
	}
	newSize, ok := checked.CheckedAdd(offset, next.size)
	if !ok {
		return Layout{}, 0, fmt.Errorf("%w: extend %s with %s", ErrOverflow, l, next)
	}

	out, err := FromSizeAlign(newSize, newAlign)
	if err != nil {
		return Layout{}, 0, err
	}
	return out, offset, nil
}

// ExtendField returns the Layout of l followed by next placed at the first
// multiple of next's own alignment, and the offset of next. This is the rule
// compilers use for struct fields. Extend instead rounds l up to the combined
// alignment, which leaves a larger gap when l's size is not a multiple of its
// own alignment.
func (l Layout) ExtendField(next Layout) (Layout, uintptr, error) {
	// With alignment 1, Extend pads to next's alignment only
	out, offset, err := Layout{size: l.size}.Extend(next)
	if err != nil {
		return Layout{}, 0, err
	}
	out, err = out.AlignTo(l.Align())
	if err != nil {
		return Layout{}, 0, err
	}
	return out, offset, nil
}

// ExtendPacked returns the Layout of l directly followed by next, without
// padding and keeping l's alignment. next starts at offset l.Size().
func (l Layout) ExtendPacked(next Layout) (Layout, error) {
	newSize, ok := checked.CheckedAdd(l.size, next.size)
	if !ok {
		return Layout{}, fmt.Errorf("%w: extend packed %s with %s", ErrOverflow, l, next)
	}
	return FromSizeAlign(newSize, l.Align())
}

// Repeat returns the Layout of n copies of l, each padded so the next one is
// aligned, and the stride between copies.
func (l Layout) Repeat(n uintptr) (Layout, uintptr, error) {
	stride := l.size + l.RequiredPadding(l.Align())
	total, ok := checked.CheckedMul(stride, n)
	if !ok {
		return Layout{}, 0, fmt.Errorf("%w: repeat %s %d times", ErrOverflow, l, n)
	}

	out, err := FromSizeAlign(total, l.Align())
	if err != nil {
		return Layout{}, 0, err
	}
	return out, stride, nil
}

// RepeatPacked returns the Layout of n copies of l with no padding between
// them. The alignment is unchanged.
func (l Layout) RepeatPacked(n uintptr) (Layout, error) {
	total, ok := checked.CheckedMul(l.size, n)
	if !ok {
		return Layout{}, fmt.Errorf("%w: repeat packed %s %d times", ErrOverflow, l, n)
	}
	return FromSizeAlign(total, l.Align())
}

// Array returns the Layout of an n element array of l, including trailing
// padding.
func (l Layout) Array(n uintptr) (Layout, error) {
	out, _, err := l.Repeat(n)
	if err != nil {
		return Layout{}, err
	}
	return out.PadToAlign(), nil
}

// ArrayOf returns the Layout of [n]T.
func ArrayOf[T any](n uintptr) (Layout, error) {
	elem, err := Of[T]()
	if err != nil {
		return Layout{}, err
	}
	return elem.Array(n)
}

// Struct lays out fields in order, the way a C or Go compiler lays out a
// struct, and returns the padded Layout with each field's offset.
func Struct(fields ...Layout) (Layout, []uintptr, error) {
	var out Layout
	offsets := make([]uintptr, len(fields))
	for i, f := range fields {
		next, off, err := out.ExtendField(f)
		if err != nil {
			return Layout{}, nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = next
		offsets[i] = off
	}
	return out.PadToAlign(), offsets, nil
}
