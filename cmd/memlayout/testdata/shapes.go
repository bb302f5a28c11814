package shapes

// @layout size=24
type Point struct {
	X    int64
	Flag bool
	Y    int64
}

// @layout mode=packed
type Wire struct {
	Kind uint8
	Len  uint32
}

// @layout
type Header struct {
	Flag  bool
	Count uint64
	Kind  uint8
}

type Unannotated struct {
	A uint8
}
