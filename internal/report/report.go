// Package report renders analyzed layouts as styled text tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	"github.com/alexhholmes/memlayout/internal/canon"
	"github.com/alexhholmes/memlayout/layout"
)

var (
	titleColor   = lipgloss.Color("#7D56F4")
	paddingColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF4B4B")
	successColor = lipgloss.Color("#04B575")
	dimColor     = lipgloss.Color("#626262")
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	padding lipgloss.Style
	err     lipgloss.Style
	hint    lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(titleColor),
		header:  lipgloss.NewStyle().Bold(true),
		padding: lipgloss.NewStyle().Foreground(paddingColor),
		err:     lipgloss.NewStyle().Foreground(errorColor),
		hint:    lipgloss.NewStyle().Foreground(successColor),
		dim:     lipgloss.NewStyle().Foreground(dimColor),
	}
}

// Printer writes human-readable layout reports
type Printer struct {
	w      io.Writer
	styles styles
	num    *message.Printer
}

// NewPrinter returns a Printer writing to w, with ANSI styling if color
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{
		w:      w,
		styles: newStyles(color),
		num:    message.NewPrinter(language.English),
	}
}

// bytes formats n with digit grouping ("4,096 bytes")
func (p *Printer) bytes(n uintptr) string {
	if n == 1 {
		return "1 byte"
	}
	return p.num.Sprintf("%d bytes", n)
}

// Struct prints the region table of a; s may be nil. Structs whose layout
// could not be computed get their errors only.
func (p *Printer) Struct(a *analyzer.AnalyzedLayout, s *analyzer.Suggestion) {
	title := a.TypeName + " (layout unknown)"
	if a.Complete() {
		title = fmt.Sprintf("%s %s", a.TypeName, a.Layout)
	}
	if a.Packed {
		title += " packed"
	}
	fmt.Fprintln(p.w, p.styles.title.Render(title))

	for _, e := range a.Errors {
		fmt.Fprintln(p.w, p.styles.err.Render("  error: "+e))
	}
	if !a.Complete() {
		fmt.Fprintln(p.w)
		return
	}

	rows := [][]string{{"OFFSET", "SIZE", "ALIGN", "FIELD", "TYPE"}}
	kinds := []analyzer.RegionKind{analyzer.FieldRegion}
	for _, r := range a.Regions {
		switch r.Kind {
		case analyzer.FieldRegion:
			rows = append(rows, []string{
				p.num.Sprintf("%d", r.Start),
				p.num.Sprintf("%d", r.Size()),
				p.num.Sprintf("%d", r.Layout.Align()),
				r.Field.Name,
				r.Field.GoType,
			})
		case analyzer.PaddingRegion:
			rows = append(rows, []string{
				p.num.Sprintf("%d", r.Start),
				p.num.Sprintf("%d", r.Size()),
				"-",
				"(padding)",
				"",
			})
		}
		kinds = append(kinds, r.Kind)
	}

	for i, line := range table(rows) {
		switch {
		case i == 0:
			line = p.styles.header.Render(line)
		case kinds[i] == analyzer.PaddingRegion:
			line = p.styles.padding.Render(line)
		}
		fmt.Fprintln(p.w, "  "+line)
	}

	if padding := a.Padding(); padding > 0 {
		fmt.Fprintln(p.w, p.styles.dim.Render(fmt.Sprintf("  %s of padding", p.bytes(padding))))
	}

	if s != nil {
		names := make([]string, len(s.Order))
		for i, f := range s.Order {
			names[i] = f.Name
		}
		fmt.Fprintln(p.w, p.styles.hint.Render(fmt.Sprintf("  reorder to save %s: %s",
			p.bytes(s.Saved()), strings.Join(names, ", "))))
	}
	fmt.Fprintln(p.w)
}

// Layout prints a single computed layout with optional field offsets
func (p *Printer) Layout(name string, l layout.Layout, offsets []uintptr) {
	fmt.Fprintln(p.w, p.styles.title.Render(fmt.Sprintf("%s %s", name, l)))
	for i, off := range offsets {
		fmt.Fprintf(p.w, "  field %d at offset %s\n", i, p.num.Sprintf("%d", off))
	}
}

// Canon prints Canonical ABI layouts of named WIT types
func (p *Printer) Canon(named []canon.Named) {
	rows := [][]string{{"TYPE", "SIZE", "ALIGN"}}
	for _, n := range named {
		rows = append(rows, []string{
			n.Name,
			p.num.Sprintf("%d", n.Info.Layout.Size()),
			p.num.Sprintf("%d", n.Info.Layout.Align()),
		})
	}
	for i, line := range table(rows) {
		if i == 0 {
			line = p.styles.header.Render(line)
		}
		fmt.Fprintln(p.w, line)
	}
}

// table left-aligns each column to its widest cell
func table(rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, len(rows))
	for r, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
			}
		}
		lines[r] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// StructJSON is the JSON form of an analyzed struct
type StructJSON struct {
	Type     string       `json:"type"`
	Size     *uintptr     `json:"size,omitempty"` // nil when the layout is unknown
	Align    *uintptr     `json:"align,omitempty"`
	Packed   bool         `json:"packed,omitempty"`
	Padding  uintptr      `json:"padding"`
	Regions  []RegionJSON `json:"regions"`
	Errors   []string     `json:"errors,omitempty"`
	Suggests []string     `json:"suggested_order,omitempty"`
	Saves    uintptr      `json:"suggested_saves,omitempty"`
}

// RegionJSON is the JSON form of a region
type RegionJSON struct {
	Kind   string  `json:"kind"`
	Offset uintptr `json:"offset"`
	Size   uintptr `json:"size"`
	Align  uintptr `json:"align,omitempty"`
	Field  string  `json:"field,omitempty"`
	Type   string  `json:"type,omitempty"`
}

// NewStructJSON converts an analyzed struct; s may be nil
func NewStructJSON(a *analyzer.AnalyzedLayout, s *analyzer.Suggestion) StructJSON {
	out := StructJSON{
		Type:    a.TypeName,
		Packed:  a.Packed,
		Regions: []RegionJSON{},
		Errors:  a.Errors,
	}
	if !a.Complete() {
		return out
	}

	size, align := a.Layout.Size(), a.Layout.Align()
	out.Size, out.Align = &size, &align
	out.Padding = a.Padding()

	for _, r := range a.Regions {
		rj := RegionJSON{
			Kind:   r.Kind.String(),
			Offset: r.Start,
			Size:   r.Size(),
		}
		if r.Kind == analyzer.FieldRegion {
			rj.Align = r.Layout.Align()
			rj.Field = r.Field.Name
			rj.Type = r.Field.GoType
		}
		out.Regions = append(out.Regions, rj)
	}

	if s != nil {
		for _, f := range s.Order {
			out.Suggests = append(out.Suggests, f.Name)
		}
		out.Saves = s.Saved()
	}
	return out
}

// CanonJSON is the JSON form of a WIT type layout
type CanonJSON struct {
	Type   string             `json:"type"`
	Size   uintptr            `json:"size"`
	Align  uintptr            `json:"align"`
	Fields map[string]uintptr `json:"field_offsets,omitempty"`
}

// NewCanonJSON converts named WIT layouts
func NewCanonJSON(named []canon.Named) []CanonJSON {
	out := make([]CanonJSON, 0, len(named))
	for _, n := range named {
		out = append(out, CanonJSON{
			Type:   n.Name,
			Size:   n.Info.Layout.Size(),
			Align:  n.Info.Layout.Align(),
			Fields: n.Info.FieldOffs,
		})
	}
	return out
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
