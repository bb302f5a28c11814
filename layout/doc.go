// Package layout computes and composes memory layouts.
//
// A Layout is the (size, alignment) pair describing how a value occupies
// memory. Layouts are immutable values; every combinator returns a new Layout
// or an error, never a partially valid result.
//
// # Invariants
//
// Every Layout satisfies:
//   - Align() is a non-zero power of two
//   - Size() <= MaxSize - (Align() - 1), so rounding the size up to the
//     alignment can never overflow
//
// The zero Layout is valid and describes a zero-sized value with alignment 1.
//
// # Usage
//
//	a, _ := layout.Of[uint32]()
//	b, _ := layout.Of[float64]()
//	rec, off, err := a.Extend(b) // off == 8, rec == <Layout| size:16, align:8>
//	if err != nil {
//		return err
//	}
//	rec = rec.PadToAlign()
//
// Failures are reported as errors wrapping ErrInvalidLayout or ErrOverflow.
package layout
