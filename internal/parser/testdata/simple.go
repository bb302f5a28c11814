package testdata

// @layout size=16
type LeafElement struct {
	Key    uint32 `layout:"offset=0"`
	Offset uint16
	Length uint16
	Flags  uint64 `layout:"offset=8"`
}

// @layout align=64
type LeafHeader struct {
	NumKeys  uint16
	NextPage uint64 `layout:"align=16"`
}

// @layout mode=packed
type WireHeader struct {
	Magic   [4]byte
	Version uint8
	Length  uint32
}

// No annotation - not reported unless AllStructs is set
type IgnoredType struct {
	Field uint32
}
