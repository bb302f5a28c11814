package example

//go:generate go run ../cmd/memlayout gen page.go

// Page is allocated on a 512 byte boundary for direct I/O
//
// @layout size=4096 align=512
type Page struct {
	Header uint16
	Body   [4080]byte
	Footer uint64 `layout:"offset=4088"`
}

// @layout mode=packed size=11
type WireHeader struct {
	Kind   uint8
	Length uint16
	Seq    uint64
}
