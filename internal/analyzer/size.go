package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/alexhholmes/memlayout/layout"
)

// ErrUnknownType is returned for type names that are neither built in nor
// registered.
var ErrUnknownType = errors.New("unknown type")

func mustOf[T any]() layout.Layout {
	l, err := layout.Of[T]()
	if err != nil {
		panic(err) // the compiler never emits a type violating the invariants
	}
	return l
}

var (
	pointerLayout   = mustOf[unsafe.Pointer]()
	sliceLayout     = mustOf[[]byte]()
	interfaceLayout = mustOf[any]()
)

// builtins maps the Go types the analyzer knows without a registry to their
// layouts on the host platform.
var builtins = map[string]layout.Layout{
	"bool":       mustOf[bool](),
	"byte":       mustOf[byte](),
	"uint8":      mustOf[uint8](),
	"int8":       mustOf[int8](),
	"uint16":     mustOf[uint16](),
	"int16":      mustOf[int16](),
	"uint32":     mustOf[uint32](),
	"int32":      mustOf[int32](),
	"rune":       mustOf[rune](),
	"float32":    mustOf[float32](),
	"uint64":     mustOf[uint64](),
	"int64":      mustOf[int64](),
	"float64":    mustOf[float64](),
	"int":        mustOf[int](),
	"uint":       mustOf[uint](),
	"uintptr":    mustOf[uintptr](),
	"complex64":  mustOf[complex64](),
	"complex128": mustOf[complex128](),
	"string":     mustOf[string](),

	"unsafe.Pointer": pointerLayout,
	"func":           mustOf[func()](),
	"error":          interfaceLayout,
	"any":            interfaceLayout,
	"interface{}":    interfaceLayout,
	"struct{}":       mustOf[struct{}](),

	"sync.Mutex":     mustOf[sync.Mutex](),
	"sync.RWMutex":   mustOf[sync.RWMutex](),
	"sync.Once":      mustOf[sync.Once](),
	"sync.WaitGroup": mustOf[sync.WaitGroup](),

	"atomic.Bool":    mustOf[atomic.Bool](),
	"atomic.Int32":   mustOf[atomic.Int32](),
	"atomic.Int64":   mustOf[atomic.Int64](),
	"atomic.Uint32":  mustOf[atomic.Uint32](),
	"atomic.Uint64":  mustOf[atomic.Uint64](),
	"atomic.Uintptr": mustOf[atomic.Uintptr](),
	"atomic.Value":   mustOf[atomic.Value](),

	"time.Time":     mustOf[time.Time](),
	"time.Duration": mustOf[time.Duration](),

	"cpu.CacheLinePad": mustOf[cpu.CacheLinePad](),
}

var builtinRegistry = NewTypeRegistry()

// LayoutOf returns the layout of a Go type expression that needs no
// registry: built-in types, pointers, slices and arrays of those.
func LayoutOf(goType string) (layout.Layout, error) {
	return builtinRegistry.LayoutOf(goType)
}

var arrayRe = regexp.MustCompile(`^\[(\d+)\](.+)$`)

// TypeRegistry tracks struct layouts and type aliases for layout analysis
type TypeRegistry struct {
	types     map[string]layout.Layout // type name → layout
	aliases   map[string]string        // alias → underlying type
	annotated map[string]bool          // layouts the compiler does not produce
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:     make(map[string]layout.Layout),
		aliases:   make(map[string]string),
		annotated: make(map[string]bool),
	}
}

// Register adds a struct type with its layout
func (r *TypeRegistry) Register(name string, l layout.Layout) {
	r.types[name] = l
	delete(r.annotated, name)
}

// RegisterAnnotated adds a struct type whose layout exists only through its
// annotation (packed or over-aligned). Structs that contain it are not
// native either.
func (r *TypeRegistry) RegisterAnnotated(name string, l layout.Layout) {
	r.types[name] = l
	r.annotated[name] = true
}

func (r *TypeRegistry) register(a *AnalyzedLayout) {
	if a.Native {
		r.Register(a.TypeName, a.Layout)
		return
	}
	r.RegisterAnnotated(a.TypeName, a.Layout)
}

// Native reports whether the Go compiler gives goType the layout LayoutOf
// returns. Pointers, slices and maps of annotated types are still native.
func (r *TypeRegistry) Native(goType string) bool {
	resolved := r.ResolveType(goType)
	if r.annotated[resolved] {
		return false
	}
	if m := arrayRe.FindStringSubmatch(resolved); m != nil {
		return r.Native(m[2])
	}
	return true
}

// RegisterAlias adds a type alias mapping (e.g., type PageID uint64)
func (r *TypeRegistry) RegisterAlias(alias, underlying string) {
	r.aliases[alias] = underlying
}

// Lookup returns the layout of a registered type
func (r *TypeRegistry) Lookup(name string) (layout.Layout, bool) {
	l, ok := r.types[name]
	return l, ok
}

// ResolveType resolves type aliases to their underlying types
// Returns the original type if not an alias
func (r *TypeRegistry) ResolveType(goType string) string {
	// Bounded so alias cycles terminate
	for range len(r.aliases) {
		underlying, ok := r.aliases[goType]
		if !ok {
			break
		}
		goType = underlying
	}
	return goType
}

// LayoutOf calculates the layout of a Go type expression, using the
// registry for struct types and aliases
func (r *TypeRegistry) LayoutOf(goType string) (layout.Layout, error) {
	resolved := r.ResolveType(goType)

	if l, ok := builtins[resolved]; ok {
		return l, nil
	}
	if l, ok := r.Lookup(resolved); ok {
		return l, nil
	}

	switch {
	case strings.HasPrefix(resolved, "[]"):
		return sliceLayout, nil
	case strings.HasPrefix(resolved, "*"),
		strings.HasPrefix(resolved, "map["),
		strings.HasPrefix(resolved, "chan "):
		return pointerLayout, nil
	case strings.HasPrefix(resolved, "["):
		return r.arrayLayout(resolved)
	}

	return layout.Layout{}, fmt.Errorf("%w: %s (not registered)", ErrUnknownType, goType)
}

func (r *TypeRegistry) arrayLayout(goType string) (layout.Layout, error) {
	// Parse: [16]byte → 16 copies of byte
	matches := arrayRe.FindStringSubmatch(goType)
	if matches == nil {
		return layout.Layout{}, fmt.Errorf("invalid array type: %s", goType)
	}

	n, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil || uint64(uintptr(n)) != n {
		return layout.Layout{}, fmt.Errorf("invalid array length: %s", matches[1])
	}

	elem, err := r.LayoutOf(matches[2])
	if err != nil {
		return layout.Layout{}, fmt.Errorf("array element: %w", err)
	}

	return elem.Array(uintptr(n))
}
