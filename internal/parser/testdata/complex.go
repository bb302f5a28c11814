package testdata

import (
	"sync"

	"golang.org/x/sys/cpu"
)

const PageSize = 0x100

type PageID uint64

type Key = [16]byte

type (
	// @layout
	Page struct {
		ID   PageID
		Data [PageSize]byte
	}

	// @layout
	Shard struct {
		sync.Mutex
		_     cpu.CacheLinePad
		x, y  int32
		names map[string]*Page
		done  chan struct{}
		keys  []Key
		stop  func()
		err   error
		empty struct{}
	}
)

// @layout size=nope
type Broken struct {
	A uint8
}

// @layout
type BadTag struct {
	A uint8 `layout:"align=3"`
	B uint8
}

type Generic[T any] struct {
	V T
}
