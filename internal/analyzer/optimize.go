package analyzer

import (
	"fmt"
	"sort"

	"github.com/alexhholmes/memlayout/internal/parser"
	"github.com/alexhholmes/memlayout/layout"
)

// Suggestion is a field order with less padding than the declared one
type Suggestion struct {
	TypeName string
	Order    []parser.Field
	Current  layout.Layout
	Optimal  layout.Layout
}

// Saved returns the number of bytes the suggested order saves
func (s *Suggestion) Saved() uintptr {
	return s.Current.Size() - s.Optimal.Size()
}

// Optimize reorders the fields of a struct to minimize padding: zero-size
// fields first, then by descending alignment. Declaration order is kept
// among fields of equal alignment. Returns nil when no order saves space.
func Optimize(tl *parser.TypeLayout, registry *TypeRegistry) (*Suggestion, error) {
	current, err := Analyze(tl, registry)
	if err != nil {
		return nil, err
	}
	if current.Packed {
		return nil, nil // Packed structs have no padding to remove
	}

	type ranked struct {
		field  parser.Field
		layout layout.Layout
	}
	fields := make([]ranked, 0, len(current.Regions))
	for _, r := range current.Regions {
		if r.Kind == FieldRegion {
			fields = append(fields, ranked{field: r.Field, layout: r.Layout})
		}
	}

	sort.SliceStable(fields, func(i, j int) bool {
		zi, zj := fields[i].layout.Size() == 0, fields[j].layout.Size() == 0
		if zi != zj {
			return zi
		}
		return fields[i].layout.Align() > fields[j].layout.Align()
	})

	reordered := &parser.TypeLayout{
		Name: tl.Name,
		Anno: &parser.TypeAnnotation{},
	}
	if tl.Anno != nil {
		reordered.Anno.Align = tl.Anno.Align
	}
	for _, f := range fields {
		// Offset assertions describe the declared order
		f.field.Layout = &parser.FieldLayout{Align: alignOf(f.field), Offset: -1}
		reordered.Fields = append(reordered.Fields, f.field)
	}

	optimal, err := Analyze(reordered, registry)
	if err != nil {
		return nil, fmt.Errorf("reordered %s: %w", tl.Name, err)
	}
	if optimal.Layout.Size() >= current.Layout.Size() {
		return nil, nil
	}

	return &Suggestion{
		TypeName: tl.Name,
		Order:    reordered.Fields,
		Current:  current.Layout,
		Optimal:  optimal.Layout,
	}, nil
}

func alignOf(f parser.Field) int {
	if f.Layout == nil {
		return 0
	}
	return f.Layout.Align
}
