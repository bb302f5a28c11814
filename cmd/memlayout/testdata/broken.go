package shapes

// @layout size=8
type Wrong struct {
	A uint32
	B uint64
}
