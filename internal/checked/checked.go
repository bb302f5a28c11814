// Package checked provides overflow-aware unsigned integer arithmetic.
//
// Wrapping operations are for rounding tricks where wraparound is intended.
// Checked operations report overflow instead of returning a truncated result.
package checked

// Unsigned represents all unsigned integer types.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Max returns the largest value representable by U.
func Max[U Unsigned]() U {
	return ^U(0)
}

// IsPowerOfTwo returns true if n is a power of two. Zero is not.
func IsPowerOfTwo[U Unsigned](n U) bool {
	return n != 0 && n&(n-1) == 0
}

// WrappingAdd returns x+y modulo the width of U.
func WrappingAdd[U Unsigned](x, y U) U {
	return x + y
}

// WrappingSub returns x-y modulo the width of U.
func WrappingSub[U Unsigned](x, y U) U {
	return x - y
}

// CheckedAdd returns x+y and true, or 0 and false if the sum overflows U.
func CheckedAdd[U Unsigned](x, y U) (U, bool) {
	sum := x + y
	// Carry out of the top bit leaves the wrapped sum below either operand.
	if sum < x {
		return 0, false
	}
	return sum, true
}

// CheckedMul returns x*y and true, or 0 and false if the product overflows U.
func CheckedMul[U Unsigned](x, y U) (U, bool) {
	if x != 0 && y > Max[U]()/x {
		return 0, false
	}
	return x * y, true
}
