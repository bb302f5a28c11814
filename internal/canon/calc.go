package canon

import (
	"fmt"
	"strconv"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/alexhholmes/memlayout/internal/logging"
	"github.com/alexhholmes/memlayout/layout"
)

// Info is the Canonical ABI layout of a WIT type.
type Info struct {
	Layout layout.Layout
	// FieldOffs maps record field names (or tuple indexes) to byte offsets.
	FieldOffs map[string]uintptr
}

func mustLayout(size, align uintptr) layout.Layout {
	l, err := layout.FromSizeAlign(size, align)
	if err != nil {
		panic(err)
	}
	return l
}

var (
	byte1  = mustLayout(1, 1)
	byte2  = mustLayout(2, 2)
	byte4  = mustLayout(4, 4)
	byte8  = mustLayout(8, 8)
	ptrLen = mustLayout(8, 4) // [ptr: u32, len: u32]
)

// Calculator computes and caches layouts of WIT type definitions.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

// Calculate returns the Canonical ABI layout of t.
func (c *Calculator) Calculate(t wit.Type) (Info, error) {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Layout: byte1}, nil
	case wit.U16, wit.S16:
		return Info{Layout: byte2}, nil
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Layout: byte4}, nil
	case wit.U64, wit.S64, wit.F64:
		return Info{Layout: byte8}, nil
	case wit.String:
		return Info{Layout: ptrLen}, nil
	case wit.ErrorContext:
		return Info{Layout: byte4}, nil
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{}, fmt.Errorf("unsupported WIT type %T", t)
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) (Info, error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	var info Info
	var err error

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info, err = c.calculateRecord(kind)
	case *wit.Tuple:
		info, err = c.calculateTuple(kind)
	case *wit.Variant:
		info, err = c.calculateVariant(kind)
	case *wit.Enum:
		info = Info{Layout: discriminant(len(kind.Cases))}
	case *wit.Option:
		info, err = c.calculateCases(2, kind.Type)
	case *wit.Result:
		info, err = c.calculateCases(2, kind.OK, kind.Err)
	case *wit.Flags:
		info, err = calculateFlags(len(kind.Flags))
	case *wit.List:
		info = Info{Layout: ptrLen}
	case *wit.Own, *wit.Borrow, *wit.Future, *wit.Stream:
		// i32 handle index
		info = Info{Layout: byte4}
	case wit.Type:
		info, err = c.Calculate(kind)
	default:
		err = fmt.Errorf("unsupported WIT type definition %T", t.Kind)
	}
	if err != nil {
		return Info{}, err
	}

	logging.Logger().Debug("canonical ABI layout",
		zap.String("type", typeDefName(t)),
		zap.Stringer("layout", info.Layout))

	c.cache[t] = info
	return info, nil
}

func (c *Calculator) calculateRecord(r *wit.Record) (Info, error) {
	fields := make([]layout.Layout, len(r.Fields))
	for i, field := range r.Fields {
		fi, err := c.Calculate(field.Type)
		if err != nil {
			return Info{}, fmt.Errorf("field %s: %w", field.Name, err)
		}
		fields[i] = fi.Layout
	}

	rec, offsets, err := layout.Struct(fields...)
	if err != nil {
		return Info{}, err
	}

	fieldOffs := make(map[string]uintptr, len(r.Fields))
	for i, field := range r.Fields {
		fieldOffs[field.Name] = offsets[i]
	}
	return Info{Layout: rec, FieldOffs: fieldOffs}, nil
}

func (c *Calculator) calculateTuple(t *wit.Tuple) (Info, error) {
	fields := make([]layout.Layout, len(t.Types))
	for i, typ := range t.Types {
		ti, err := c.Calculate(typ)
		if err != nil {
			return Info{}, fmt.Errorf("tuple element %d: %w", i, err)
		}
		fields[i] = ti.Layout
	}

	rec, offsets, err := layout.Struct(fields...)
	if err != nil {
		return Info{}, err
	}

	fieldOffs := make(map[string]uintptr, len(t.Types))
	for i, off := range offsets {
		fieldOffs[strconv.Itoa(i)] = off
	}
	return Info{Layout: rec, FieldOffs: fieldOffs}, nil
}

func (c *Calculator) calculateVariant(v *wit.Variant) (Info, error) {
	payloads := make([]wit.Type, 0, len(v.Cases))
	for _, cs := range v.Cases {
		payloads = append(payloads, cs.Type)
	}
	return c.calculateCases(len(v.Cases), payloads...)
}

// calculateCases lays out a discriminant for numCases cases followed by a
// payload large and aligned enough for every non-nil payload type.
func (c *Calculator) calculateCases(numCases int, payloads ...wit.Type) (Info, error) {
	var maxSize, maxAlign uintptr = 0, 1
	for _, p := range payloads {
		if p == nil {
			continue
		}
		pi, err := c.Calculate(p)
		if err != nil {
			return Info{}, err
		}
		maxSize = max(maxSize, pi.Layout.Size())
		maxAlign = max(maxAlign, pi.Layout.Align())
	}

	payload, err := layout.FromSizeAlign(maxSize, maxAlign)
	if err != nil {
		return Info{}, err
	}

	out, _, err := discriminant(numCases).Extend(payload)
	if err != nil {
		return Info{}, err
	}
	return Info{Layout: out.PadToAlign()}, nil
}

// discriminant returns the layout of the case index for numCases cases.
func discriminant(numCases int) layout.Layout {
	switch {
	case numCases <= 1<<8:
		return byte1
	case numCases <= 1<<16:
		return byte2
	default:
		return byte4
	}
}

func calculateFlags(numFlags int) (Info, error) {
	switch {
	case numFlags == 0:
		return Info{}, nil
	case numFlags <= 8:
		return Info{Layout: byte1}, nil
	case numFlags <= 16:
		return Info{Layout: byte2}, nil
	}

	// One u32 per 32 flags
	words := uintptr(numFlags+31) / 32
	l, err := byte4.Array(words)
	if err != nil {
		return Info{}, err
	}
	return Info{Layout: l}, nil
}

func typeDefName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return "<anonymous>"
}

// Named is the layout of a named type definition.
type Named struct {
	Name string
	Info Info
}

// ResolveAll computes layouts of every named type definition in res that
// has a value layout. Definitions that have none (resources, functions)
// are skipped.
func (c *Calculator) ResolveAll(res *wit.Resolve) ([]Named, error) {
	var out []Named
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		if _, ok := td.Kind.(*wit.Resource); ok {
			continue
		}
		info, err := c.calculateTypeDef(td)
		if err != nil {
			return out, fmt.Errorf("%s: %w", *td.Name, err)
		}
		out = append(out, Named{Name: *td.Name, Info: info})
	}
	return out, nil
}
