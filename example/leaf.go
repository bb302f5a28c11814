package example

//go:generate go run ../cmd/memlayout gen leaf.go

// @layout size=8
type LeafElement struct {
	Key    uint32 `layout:"offset=0"`
	Offset uint32 `layout:"offset=4"`
}

// @layout size=16
type LeafHeader struct {
	NumKeys  uint16 `layout:"offset=0"`
	Flags    uint16 `layout:"offset=2"`
	NextPage uint32 `layout:"offset=4"`
	PrevPage uint32 `layout:"offset=8"`
	Reserved uint32 `layout:"offset=12"`
}

// LeafNode fills exactly one page
//
// @layout size=4096
type LeafNode struct {
	Header   LeafHeader
	Elements [509]LeafElement
	Footer   uint64 `layout:"offset=4088"`
}
