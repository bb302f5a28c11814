package analyzer

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// Structs in this file are parsed by the tests and compared against the
// compiler's own layout.

type fixtureMixed struct {
	a int32
	b float64
	c byte
	d int32
}

type fixtureNested struct {
	head  byte
	inner fixtureMixed
	tail  uint16
}

type fixtureTrailingZero struct {
	n   int64
	end struct{}
}

type fixtureLeadingZero struct {
	start struct{}
	n     int64
}

type fixtureEmpty struct{}

type fixtureShard struct {
	mu    sync.Mutex
	_     cpu.CacheLinePad
	hits  atomic.Uint64
	at    time.Time
	names map[string]int
	items []fixtureMixed
	err   error
	arr   [3]fixtureNested
	next  *fixtureShard
	flag  bool
}

type fixtureEmbed struct {
	sync.RWMutex
	n  int16
	id fixtureID
}

type fixtureID uint32
