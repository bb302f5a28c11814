package analyzer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexhholmes/memlayout/internal/logging"
	"github.com/alexhholmes/memlayout/internal/parser"
	"github.com/alexhholmes/memlayout/layout"
)

// Region represents a span of bytes in the struct layout
type Region struct {
	Kind   RegionKind
	Start  uintptr       // Byte offset where region begins
	End    uintptr       // Byte offset where region ends (exclusive)
	Field  parser.Field  // The field occupying this region (zero for padding)
	Layout layout.Layout // The field's layout (zero for padding)
}

// Size returns the number of bytes the region covers
func (r Region) Size() uintptr {
	return r.End - r.Start
}

type RegionKind int

const (
	FieldRegion   RegionKind = iota // Bytes occupied by a field
	PaddingRegion                   // Bytes inserted for alignment
)

func (k RegionKind) String() string {
	switch k {
	case FieldRegion:
		return "field"
	case PaddingRegion:
		return "padding"
	default:
		return "unknown"
	}
}

// AnalyzedLayout contains the analyzed memory layout with regions
type AnalyzedLayout struct {
	TypeName string
	Layout   layout.Layout
	Packed   bool
	Regions  []Region
	Errors   []string // Validation errors

	// Native is set when the Go compiler produces Layout for the struct:
	// it is not packed, neither the annotation nor a field tag raises an
	// alignment, and no field embeds a struct that is not native.
	Native bool

	complete bool // Layout was computed; only assertions may have failed
}

// Analyze computes the layout of a parsed struct
func Analyze(tl *parser.TypeLayout, registry *TypeRegistry) (*AnalyzedLayout, error) {
	if tl == nil {
		return nil, fmt.Errorf("layout is nil")
	}

	anno := tl.Anno
	if anno == nil {
		anno = &parser.TypeAnnotation{}
	}

	a := &AnalyzedLayout{
		TypeName: tl.Name,
		Packed:   anno.Packed,
		Native:   !anno.Packed,
	}

	// Phase 1: Resolve field layouts
	fieldLayouts, unresolved := a.resolveFields(tl, registry)
	if len(a.Errors) > 0 {
		err := fmt.Errorf("layout has %d errors", len(a.Errors))
		if unresolved {
			err = fmt.Errorf("%w: %w", ErrUnknownType, err)
		}
		return a, err
	}

	// Phase 2: Compose fields in declaration order
	if err := a.compose(tl, fieldLayouts); err != nil {
		a.Errors = append(a.Errors, err.Error())
		return a, err
	}

	// Phase 3: Struct-level alignment and trailing padding
	if err := a.finish(anno); err != nil {
		a.Errors = append(a.Errors, err.Error())
		return a, err
	}

	a.complete = true

	// Phase 4: Check size and offset assertions
	a.checkAssertions(tl, anno)

	logging.Logger().Debug("analyzed struct layout",
		zap.String("type", a.TypeName),
		zap.Uintptr("size", a.Layout.Size()),
		zap.Uintptr("align", a.Layout.Align()),
		zap.Uintptr("padding", a.Padding()),
		zap.Int("errors", len(a.Errors)))

	if len(a.Errors) > 0 {
		return a, fmt.Errorf("layout has %d errors", len(a.Errors))
	}
	return a, nil
}

func (a *AnalyzedLayout) resolveFields(tl *parser.TypeLayout, registry *TypeRegistry) ([]layout.Layout, bool) {
	unresolved := false
	fieldLayouts := make([]layout.Layout, len(tl.Fields))

	for i, field := range tl.Fields {
		fl, err := registry.LayoutOf(field.GoType)
		if err != nil {
			unresolved = unresolved || errors.Is(err, ErrUnknownType)
			a.Errors = append(a.Errors, fmt.Sprintf("%s: cannot determine layout: %v", field.Name, err))
			continue
		}
		if !registry.Native(field.GoType) {
			a.Native = false
		}

		if field.Layout != nil && field.Layout.Align > 0 {
			if uintptr(field.Layout.Align) > fl.Align() {
				a.Native = false
			}
			if a.Packed {
				a.Errors = append(a.Errors, fmt.Sprintf("%s: align has no effect in packed mode", field.Name))
				continue
			}
			fl, err = fl.AlignTo(uintptr(field.Layout.Align))
			if err != nil {
				a.Errors = append(a.Errors, fmt.Sprintf("%s: %v", field.Name, err))
				continue
			}
		}

		fieldLayouts[i] = fl
	}

	return fieldLayouts, unresolved
}

func (a *AnalyzedLayout) compose(tl *parser.TypeLayout, fieldLayouts []layout.Layout) error {
	var cur layout.Layout
	var end uintptr

	for i, field := range tl.Fields {
		fl := fieldLayouts[i]

		var offset uintptr
		var err error
		if a.Packed {
			offset = cur.Size()
			cur, err = cur.ExtendPacked(fl)
		} else {
			cur, offset, err = cur.ExtendField(fl)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", field.Name, err)
		}

		a.addPadding(end, offset)
		a.Regions = append(a.Regions, Region{
			Kind:   FieldRegion,
			Start:  offset,
			End:    offset + fl.Size(),
			Field:  field,
			Layout: fl,
		})
		end = offset + fl.Size()
	}

	// Go gives a trailing zero-size field its own byte so that taking its
	// address never points past the end of the struct
	if !a.Packed && len(fieldLayouts) > 0 && cur.Size() > 0 &&
		fieldLayouts[len(fieldLayouts)-1].Size() == 0 {
		var err error
		cur, err = cur.ExtendPacked(oneByte)
		if err != nil {
			return err
		}
	}

	a.Layout = cur
	return nil
}

var oneByte = mustOf[byte]()

func (a *AnalyzedLayout) finish(anno *parser.TypeAnnotation) error {
	end := a.Layout.Size()
	if n := len(a.Regions); n > 0 {
		end = a.Regions[n-1].End
	}

	if anno.Align > 0 {
		if uintptr(anno.Align) > a.Layout.Align() {
			a.Native = false
		}
		aligned, err := a.Layout.AlignTo(uintptr(anno.Align))
		if err != nil {
			return err
		}
		a.Layout = aligned
	}

	if !a.Packed || anno.Align > 0 {
		a.Layout = a.Layout.PadToAlign()
	}

	a.addPadding(end, a.Layout.Size())
	return nil
}

func (a *AnalyzedLayout) addPadding(from, to uintptr) {
	if to > from {
		a.Regions = append(a.Regions, Region{
			Kind:  PaddingRegion,
			Start: from,
			End:   to,
		})
	}
}

func (a *AnalyzedLayout) checkAssertions(tl *parser.TypeLayout, anno *parser.TypeAnnotation) {
	for _, region := range a.Regions {
		if region.Kind != FieldRegion || region.Field.Layout == nil {
			continue
		}
		want := region.Field.Layout.Offset
		if want >= 0 && uintptr(want) != region.Start {
			a.Errors = append(a.Errors, fmt.Sprintf("%s: offset is %d, tag expects %d",
				region.Field.Name, region.Start, want))
		}
	}

	if anno.Size > 0 && uintptr(anno.Size) != a.Layout.Size() {
		a.Errors = append(a.Errors, fmt.Sprintf("%s: size is %d, annotation expects %d",
			tl.Name, a.Layout.Size(), anno.Size))
	}
}

// Padding returns the total number of padding bytes
func (a *AnalyzedLayout) Padding() uintptr {
	var n uintptr
	for _, r := range a.Regions {
		if r.Kind == PaddingRegion {
			n += r.Size()
		}
	}
	return n
}

// Complete reports whether Layout was computed. A complete layout may still
// have failed its size or offset assertions.
func (a *AnalyzedLayout) Complete() bool {
	return a.complete
}

// IsValid returns true if layout has no errors
func (a *AnalyzedLayout) IsValid() bool {
	return len(a.Errors) == 0
}

// AnalyzeAll analyzes every struct in a parsed file. Structs may refer to
// each other in any order; each one is registered once analyzed so later
// structs can use it. Unannotated structs are analyzed and registered too,
// but only file.Types is returned, in declaration order.
func AnalyzeAll(file *parser.File, registry *TypeRegistry) ([]*AnalyzedLayout, error) {
	for alias, underlying := range file.Aliases {
		registry.RegisterAlias(alias, underlying)
	}

	all := make([]*parser.TypeLayout, 0, len(file.Types)+len(file.Unannotated))
	all = append(all, file.Types...)
	all = append(all, file.Unannotated...)

	analyzed := make([]*AnalyzedLayout, len(all))
	pending := make([]int, 0, len(all))
	for i := range all {
		pending = append(pending, i)
	}

	// Each pass resolves at least one struct or stops
	for len(pending) > 0 {
		var next []int
		for _, i := range pending {
			tl := all[i]
			a, err := Analyze(tl, registry)
			analyzed[i] = a
			if errors.Is(err, ErrUnknownType) {
				next = append(next, i)
				continue
			}
			if a.complete {
				registry.register(a)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}

	results := analyzed[:len(file.Types)]
	invalid := 0
	for _, a := range results {
		if !a.IsValid() {
			invalid++
			logging.Logger().Warn("struct layout has errors",
				zap.String("type", a.TypeName),
				zap.Strings("errors", a.Errors))
		}
	}
	if invalid > 0 {
		return results, fmt.Errorf("%d of %d layouts have errors", invalid, len(results))
	}
	return results, nil
}
