package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	"github.com/alexhholmes/memlayout/internal/report"
	"github.com/alexhholmes/memlayout/layout"
)

func newCalcCmd(opts *options) *cobra.Command {
	var fields []string
	var packed bool
	var repeat uint64

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compose a layout from field sizes and alignments",
		Long: `Calc lays out fields in order the way a struct would and prints the
result. Each --field is either size:align or a Go type the analyzer knows
(uint64, string, [16]byte, *T, time.Time, ...).

Example:
  memlayout calc --field 1:1 --field uint64 --field 2:2
  memlayout calc --field 3:1 --field 4:4 --packed
  memlayout calc --field uint32 --field uint8 --repeat 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uint64(uintptr(repeat)) != repeat {
				return fmt.Errorf("repeat %d does not fit in uintptr", repeat)
			}
			return runCalc(cmd, opts, fields, packed, uintptr(repeat))
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field as size:align or a Go type (repeatable)")
	cmd.Flags().BoolVar(&packed, "packed", false, "Compose without padding")
	cmd.Flags().Uint64VarP(&repeat, "repeat", "r", 0, "Lay out this many copies of the result")
	return cmd
}

// calcResult is the JSON form of a calc run
type calcResult struct {
	Size    uintptr   `json:"size"`
	Align   uintptr   `json:"align"`
	Offsets []uintptr `json:"offsets"`
	Repeat  uintptr   `json:"repeat,omitempty"`
	Stride  uintptr   `json:"stride,omitempty"`
}

func runCalc(cmd *cobra.Command, opts *options, specs []string, packed bool, repeat uintptr) error {
	fields := make([]layout.Layout, len(specs))
	for i, spec := range specs {
		l, err := parseField(spec)
		if err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		fields[i] = l
	}

	var result layout.Layout
	var offsets []uintptr
	var err error
	if packed {
		result, offsets, err = composePacked(fields)
	} else {
		result, offsets, err = layout.Struct(fields...)
	}
	if err != nil {
		return err
	}

	name := "struct"
	var stride uintptr
	if repeat > 0 {
		name = fmt.Sprintf("[%d]struct", repeat)
		if packed {
			stride = result.Size()
			result, err = result.RepeatPacked(repeat)
		} else {
			result, stride, err = result.Repeat(repeat)
		}
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput() {
		return report.WriteJSON(out, calcResult{
			Size:    result.Size(),
			Align:   result.Align(),
			Offsets: offsets,
			Repeat:  repeat,
			Stride:  stride,
		})
	}

	opts.printer(out).Layout(name, result, offsets)
	if repeat > 0 {
		fmt.Fprintf(out, "  stride %d\n", stride)
	}
	return nil
}

// parseField parses "size:align" or a Go type name
func parseField(spec string) (layout.Layout, error) {
	sizeStr, alignStr, ok := strings.Cut(spec, ":")
	if !ok {
		return analyzer.LayoutOf(strings.TrimSpace(spec))
	}

	size, err := strconv.ParseUint(strings.TrimSpace(sizeStr), 0, 64)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("invalid size %q", sizeStr)
	}
	align, err := strconv.ParseUint(strings.TrimSpace(alignStr), 0, 64)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("invalid align %q", alignStr)
	}
	if uint64(uintptr(size)) != size || uint64(uintptr(align)) != align {
		return layout.Layout{}, fmt.Errorf("%q does not fit in uintptr", spec)
	}
	return layout.FromSizeAlign(uintptr(size), uintptr(align))
}

// composePacked places fields back to back with alignment 1
func composePacked(fields []layout.Layout) (layout.Layout, []uintptr, error) {
	var cur layout.Layout
	offsets := make([]uintptr, len(fields))
	for i, f := range fields {
		offsets[i] = cur.Size()
		var err error
		cur, err = cur.ExtendPacked(f)
		if err != nil {
			return layout.Layout{}, nil, err
		}
	}
	return cur, offsets, nil
}
