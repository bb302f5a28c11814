package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldLayout holds the per-field options from a `layout:"..."` struct tag
type FieldLayout struct {
	Align  int // Minimum alignment in bytes (0 = natural alignment of the type)
	Offset int // Expected byte offset, -1 if not asserted
}

// DefaultFieldLayout is the layout of a field without a tag
func DefaultFieldLayout() *FieldLayout {
	return &FieldLayout{Offset: -1}
}

// ParseTag parses layout struct tags
//
// Semantics:
//   - "align=N"          : Raise the field's alignment to N (power of 2)
//   - "offset=N"         : Assert the field starts at byte N
//   - "align=N,offset=M" : Both
//
// Examples:
//
//	"offset=0"           → field must be first
//	"align=64"           → field starts on a 64 byte boundary
//	"align=8,offset=16"  → 8-aligned, expected at byte 16
func ParseTag(tag string) (*FieldLayout, error) {
	if tag == "" {
		return nil, fmt.Errorf("empty layout tag")
	}

	f := DefaultFieldLayout()

	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[1] == "" {
			return nil, fmt.Errorf("invalid layout tag parameter: %q", part)
		}

		switch kv[0] {
		case "align":
			align, err := parseAlign(kv[1])
			if err != nil {
				return nil, err
			}
			f.Align = align

		case "offset":
			offset, err := strconv.Atoi(kv[1])
			if err != nil {
				return nil, fmt.Errorf("invalid offset: %s", kv[1])
			}
			if offset < 0 {
				return nil, fmt.Errorf("offset must not be negative, got: %d", offset)
			}
			f.Offset = offset

		default:
			return nil, fmt.Errorf("unknown layout tag parameter: %s", kv[0])
		}
	}

	return f, nil
}
