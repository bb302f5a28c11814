package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeAnnotation holds parsed @layout annotation
type TypeAnnotation struct {
	Size   int  // Expected size in bytes (0 = no assertion)
	Align  int  // Minimum alignment in bytes (0 = natural alignment)
	Packed bool // Compose fields without padding
}

var (
	annotationRe = regexp.MustCompile(`@layout(?:\s+(.+))?`)
	// Allow negative numbers in values so they are rejected with a clear error
	pairRe = regexp.MustCompile(`(\w+)=([\w-]+)`)
)

// ParseAnnotation parses @layout annotation from comment text
//
// Expected format:
//
//	// @layout
//	// @layout size=24
//	// @layout size=24 align=64
//	// @layout mode=packed
//
// Params are space-separated key=value pairs. All params are optional:
// size asserts the computed size, align raises the struct alignment and
// mode selects natural (default) or packed field composition.
func ParseAnnotation(comment string) (*TypeAnnotation, error) {
	matches := annotationRe.FindStringSubmatch(comment)
	if matches == nil {
		return nil, fmt.Errorf("no @layout annotation found")
	}

	if len(matches) < 2 || matches[1] == "" {
		return &TypeAnnotation{}, nil
	}

	return parseLayoutParams(matches[1])
}

func parseLayoutParams(params string) (*TypeAnnotation, error) {
	anno := &TypeAnnotation{}

	pairs := pairRe.FindAllStringSubmatch(params, -1)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("invalid @layout parameters: %s", params)
	}

	for _, pair := range pairs {
		key := pair[1]
		value := pair[2]

		switch key {
		case "size":
			size, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid size: %s", value)
			}
			if size < 0 {
				return nil, fmt.Errorf("size must not be negative, got: %d", size)
			}
			anno.Size = size

		case "align":
			align, err := parseAlign(value)
			if err != nil {
				return nil, err
			}
			anno.Align = align

		case "mode":
			switch value {
			case "natural":
				anno.Packed = false
			case "packed":
				anno.Packed = true
			default:
				return nil, fmt.Errorf("mode must be 'natural' or 'packed', got: %s", value)
			}

		default:
			return nil, fmt.Errorf("unknown parameter: %s", key)
		}
	}

	return anno, nil
}

func parseAlign(value string) (int, error) {
	align, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid align value: %s", value)
	}
	if align <= 0 || (align&(align-1)) != 0 {
		return 0, fmt.Errorf("align must be a power of 2, got: %d", align)
	}
	return align, nil
}

// FindAnnotation searches comment lines for @layout annotation
// Returns the annotation and true if found. A malformed annotation is
// reported as found with a non-nil error.
func FindAnnotation(comments []string) (*TypeAnnotation, bool, error) {
	for _, comment := range comments {
		if !strings.HasPrefix(comment, "@layout") {
			continue
		}
		anno, err := ParseAnnotation(comment)
		return anno, true, err
	}
	return nil, false, nil
}

// CleanComment removes comment markers from a line
// "// @layout size=24" → "@layout size=24"
// "/* @layout size=24 */" → "@layout size=24"
func CleanComment(line string) string {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "//") {
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimSpace(line)
		return line
	}

	if strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") {
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		return line
	}

	return line
}
