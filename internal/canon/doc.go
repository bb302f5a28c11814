// Package canon computes Canonical ABI layouts for WIT types.
//
// The Component Model's Canonical ABI fixes how WIT values are laid out in
// linear memory. This package expresses those rules with the layout engine:
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Strings and lists: a (pointer, length) pair of u32, {8, 4}
//   - Handles (own, borrow): a u32 index
//   - Records and tuples: fields laid out with Extend, padded to alignment
//   - Variants, options, results: discriminant followed by the largest case
//   - Enums: the discriminant alone
//   - Flags: 1 or 2 bytes, or one u32 per 32 flags
//
// Offsets are 32-bit in linear memory; the engine's uintptr arithmetic is a
// superset and reports overflow the same way.
package canon
