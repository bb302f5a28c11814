package layout

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLayout(t *testing.T, size, align uintptr) Layout {
	t.Helper()
	l, err := FromSizeAlign(size, align)
	require.NoError(t, err)
	return l
}

func TestFromSizeAlign(t *testing.T) {
	tests := []struct {
		name    string
		size    uintptr
		align   uintptr
		wantErr bool
	}{
		{"zero size align 1", 0, 1, false},
		{"size 5 align 4", 5, 4, false},
		{"large align", 1, 1 << 20, false},
		{"align zero", 8, 0, true},
		{"align three", 8, 3, true},
		{"align six", 0, 6, true},
		{"max size align 1", MaxSize, 1, false},
		{"max size align 2", MaxSize, 2, true},
		{"boundary align 8", MaxSize - 7, 8, false},
		{"past boundary align 8", MaxSize - 6, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := FromSizeAlign(tt.size, tt.align)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidLayout)
				assert.Equal(t, Layout{}, l)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, l.Size())
			assert.Equal(t, tt.align, l.Align())
		})
	}
}

func TestFromSizeAlignRejectsNonPowerOfTwo(t *testing.T) {
	for _, size := range []uintptr{0, 1, 3, 4, 1024, MaxSize} {
		_, err := FromSizeAlign(size, 3)
		assert.ErrorIs(t, err, ErrInvalidLayout, "size %d", size)
	}
}

func TestZeroLayout(t *testing.T) {
	var l Layout
	assert.Equal(t, uintptr(0), l.Size())
	assert.Equal(t, uintptr(1), l.Align())
	assert.Equal(t, mustLayout(t, 0, 1), l)
}

func TestOf(t *testing.T) {
	type mixed struct {
		a int32
		b float64
		c byte
		d int32
	}

	tests := []struct {
		name string
		got  func() (Layout, error)
		want reflect.Type
	}{
		{"int", Of[int], reflect.TypeFor[int]()},
		{"uint8", Of[uint8], reflect.TypeFor[uint8]()},
		{"float64", Of[float64], reflect.TypeFor[float64]()},
		{"string", Of[string], reflect.TypeFor[string]()},
		{"struct", Of[mixed], reflect.TypeFor[mixed]()},
		{"empty", Of[struct{}], reflect.TypeFor[struct{}]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := tt.got()
			require.NoError(t, err)
			assert.Equal(t, tt.want.Size(), l.Size())
			assert.Equal(t, uintptr(tt.want.Align()), l.Align())

			fromType, err := FromType(tt.want)
			require.NoError(t, err)
			assert.Equal(t, l, fromType)
		})
	}
}

func TestFromTypeNil(t *testing.T) {
	_, err := FromType(nil)
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestRequiredPadding(t *testing.T) {
	tests := []struct {
		size, align, padTo, want uintptr
	}{
		{5, 4, 4, 3},
		{8, 4, 4, 0},
		{0, 1, 8, 0},
		{1, 1, 8, 7},
		{9, 1, 8, 7},
		{16, 8, 16, 0},
		{17, 1, 1, 0},
	}

	for _, tt := range tests {
		l := mustLayout(t, tt.size, tt.align)
		assert.Equal(t, tt.want, l.RequiredPadding(tt.padTo),
			"%s.RequiredPadding(%d)", l, tt.padTo)
	}
}

func TestRequiredPaddingNearMax(t *testing.T) {
	l := mustLayout(t, MaxSize-30, 16)
	assert.Equal(t, uintptr(15), l.RequiredPadding(16))
	assert.Equal(t, MaxSize-15, l.PadToAlign().Size())
}

func TestPadToAlign(t *testing.T) {
	l := mustLayout(t, 5, 4)
	padded := l.PadToAlign()
	assert.Equal(t, uintptr(8), padded.Size())
	assert.Equal(t, uintptr(4), padded.Align())
	assert.Equal(t, l, mustLayout(t, 5, 4), "PadToAlign must not mutate the receiver")
}

func TestPadToAlignIdempotent(t *testing.T) {
	for size := uintptr(0); size < 64; size++ {
		for align := uintptr(1); align <= 32; align <<= 1 {
			l := mustLayout(t, size, align)
			once := l.PadToAlign()
			require.Equal(t, once, once.PadToAlign(), "%s", l)
			require.Zero(t, once.Size()%align)
			require.Less(t, once.Size()-size, align)
		}
	}
}

func TestAlignTo(t *testing.T) {
	l := mustLayout(t, 6, 2)

	raised, err := l.AlignTo(8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(6), raised.Size())
	assert.Equal(t, uintptr(8), raised.Align())

	same, err := l.AlignTo(1)
	require.NoError(t, err)
	assert.Equal(t, l, same)

	_, err = l.AlignTo(12)
	require.ErrorIs(t, err, ErrInvalidLayout)

	big := mustLayout(t, MaxSize-1, 2)
	_, err = big.AlignTo(4)
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestDanglingAddr(t *testing.T) {
	l := mustLayout(t, 0, 16)
	addr := l.DanglingAddr()
	assert.NotZero(t, addr)
	assert.Zero(t, addr%16)
}

func TestString(t *testing.T) {
	assert.Equal(t, "<Layout| size:5, align:4>", mustLayout(t, 5, 4).String())
	assert.Equal(t, "<Layout| size:0, align:1>", Layout{}.String())
}

func TestOfMatchesUnsafe(t *testing.T) {
	var x complex128
	l, err := Of[complex128]()
	require.NoError(t, err)
	assert.Equal(t, unsafe.Sizeof(x), l.Size())
	assert.Equal(t, unsafe.Alignof(x), l.Align())
}
