package codegen

import (
	"fmt"
	"go/format"
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	"github.com/alexhholmes/memlayout/internal/logging"
)

// Generator generates layout constants and compile-time layout assertions
type Generator struct {
	pkg     string
	layouts []*analyzer.AnalyzedLayout
	names   map[string]string // identifier → what declares it
}

// NewGenerator creates a generator for a file in package pkg
func NewGenerator(pkg string) *Generator {
	return &Generator{
		pkg:   pkg,
		names: make(map[string]string),
	}
}

// Add queues an analyzed struct for generation. Layouts with errors are
// rejected since their numbers are not what the compiler produces, and so
// are layouts whose constants would redeclare an identifier already queued.
func (g *Generator) Add(a *analyzer.AnalyzedLayout) error {
	if a == nil {
		return fmt.Errorf("layout is nil")
	}
	if !a.IsValid() {
		return fmt.Errorf("%s: layout has %d errors", a.TypeName, len(a.Errors))
	}

	added := make(map[string]string)
	for _, id := range identifiers(a) {
		prev, ok := g.names[id.name]
		if !ok {
			prev, ok = added[id.name]
		}
		if ok {
			return fmt.Errorf("%s: %s and %s both declare %s", a.TypeName, prev, id.what, id.name)
		}
		added[id.name] = id.what
	}
	maps.Copy(g.names, added)

	g.layouts = append(g.layouts, a)
	return nil
}

type identifier struct {
	name string
	what string
}

// identifiers lists the type name and every constant GenerateConstants
// declares for a.
func identifiers(a *analyzer.AnalyzedLayout) []identifier {
	ids := []identifier{
		{a.TypeName, "type " + a.TypeName},
		{a.TypeName + "Size", a.TypeName + " size"},
		{a.TypeName + "Align", a.TypeName + " alignment"},
	}
	for _, r := range fieldRegions(a) {
		ids = append(ids, identifier{
			offsetConst(a.TypeName, r.Field.Name),
			"offset of " + a.TypeName + "." + r.Field.Name,
		})
	}
	return ids
}

// Generate returns the gofmt-ed source of the whole file
func (g *Generator) Generate() ([]byte, error) {
	if g.pkg == "" {
		return nil, fmt.Errorf("package name is empty")
	}

	var code strings.Builder
	code.WriteString("// Code generated by memlayout. DO NOT EDIT.\n\n")
	code.WriteString(fmt.Sprintf("package %s\n\n", g.pkg))

	if g.needsUnsafe() {
		code.WriteString("import \"unsafe\"\n\n")
	}

	for _, a := range g.layouts {
		code.WriteString(GenerateConstants(a))
		code.WriteString("\n")
		if Checkable(a) {
			code.WriteString(GenerateAssertions(a))
			code.WriteString("\n")
		}
	}

	src, err := format.Source([]byte(code.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}

	logging.Logger().Debug("generated layout assertions",
		zap.String("package", g.pkg),
		zap.Int("types", len(g.layouts)),
		zap.Int("bytes", len(src)))

	return src, nil
}

// needsUnsafe returns true if any queued struct gets compile-time checks
func (g *Generator) needsUnsafe() bool {
	for _, a := range g.layouts {
		if Checkable(a) {
			return true
		}
	}
	return false
}

// Checkable reports whether the compiler lays a out the way the analyzer
// did. Packed composition and raised alignments exist only in annotations,
// so those structs, and structs holding them by value, get constants
// without assertions.
func Checkable(a *analyzer.AnalyzedLayout) bool {
	return a.Native
}

// GenerateConstants emits Size, Align and per-field Offset constants
func GenerateConstants(a *analyzer.AnalyzedLayout) string {
	var code strings.Builder

	code.WriteString(fmt.Sprintf("// %s layout: %s\n", a.TypeName, a.Layout))
	code.WriteString("const (\n")
	code.WriteString(fmt.Sprintf("\t%sSize = %d\n", a.TypeName, a.Layout.Size()))
	code.WriteString(fmt.Sprintf("\t%sAlign = %d\n", a.TypeName, a.Layout.Align()))
	for _, r := range fieldRegions(a) {
		code.WriteString(fmt.Sprintf("\t%s = %d\n", offsetConst(a.TypeName, r.Field.Name), r.Start))
	}
	code.WriteString(")\n")

	return code.String()
}

// GenerateAssertions emits a function that fails to compile when the
// compiler's size, alignment or field offsets differ from the analyzed ones.
// A mismatch either underflows the constant index or indexes past x.
func GenerateAssertions(a *analyzer.AnalyzedLayout) string {
	var code strings.Builder
	zero := a.TypeName + "{}"

	code.WriteString("func _() {\n")
	code.WriteString(fmt.Sprintf("\t// Regenerate if %s changed.\n", a.TypeName))
	code.WriteString("\tvar x [1]struct{}\n")
	code.WriteString(fmt.Sprintf("\t_ = x[unsafe.Sizeof(%s)-%d]\n", zero, a.Layout.Size()))
	code.WriteString(fmt.Sprintf("\t_ = x[unsafe.Alignof(%s)-%d]\n", zero, a.Layout.Align()))
	for _, r := range fieldRegions(a) {
		code.WriteString(fmt.Sprintf("\t_ = x[unsafe.Offsetof(%s.%s)-%d]\n", zero, r.Field.Name, r.Start))
	}
	code.WriteString("}\n")

	return code.String()
}

// fieldRegions returns the regions of named fields. Blank fields cannot be
// selected and have no constant.
func fieldRegions(a *analyzer.AnalyzedLayout) []analyzer.Region {
	var out []analyzer.Region
	for _, r := range a.Regions {
		if r.Kind == analyzer.FieldRegion && r.Field.Name != "_" && r.Field.Name != "" {
			out = append(out, r)
		}
	}
	return out
}

func offsetConst(typeName, fieldName string) string {
	r, n := utf8.DecodeRuneInString(fieldName)
	return typeName + string(unicode.ToUpper(r)) + fieldName[n:] + "Offset"
}
