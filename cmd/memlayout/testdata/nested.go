package shapes

type Inner struct {
	A uint64
	B byte
}

// @layout size=24
type Holder struct {
	I Inner
	C byte `layout:"offset=16"`
}

// @layout mode=packed
type Frame struct {
	Tag byte
	Len uint32
}

// @layout
type Envelope struct {
	F   Frame
	Seq uint64
}
