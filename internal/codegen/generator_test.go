package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	layoutparser "github.com/alexhholmes/memlayout/internal/parser"
)

const shapesSrc = `package shapes

// @layout size=24
type Point struct {
	X    int64
	Flag bool
	Y    int64
}

// @layout mode=packed
type Wire struct {
	Kind uint8
	Len  uint32
}

// @layout align=64
type Line struct {
	A uint64
}

// @layout
type node struct {
	id  int64
	val int32
	_   [4]byte
}

// @layout
type Tagged struct {
	A uint8
	B uint16 ` + "`layout:\"align=8\"`" + `
}

// @layout
type Frame struct {
	W   Wire
	Seq uint64
}

// @layout
type Segment struct {
	Lines [2]Line
}

// @layout
type Ref struct {
	W *Wire
	L []Line
}
`

func analyzeSource(t *testing.T, src string) map[string]*analyzer.AnalyzedLayout {
	t.Helper()

	file, err := layoutparser.ParseSource("shapes.go", src, layoutparser.Options{})
	require.NoError(t, err)
	require.Empty(t, file.Errors)

	layouts, err := analyzer.AnalyzeAll(file, analyzer.NewTypeRegistry())
	require.NoError(t, err)

	out := make(map[string]*analyzer.AnalyzedLayout, len(layouts))
	for _, a := range layouts {
		out[a.TypeName] = a
	}
	return out
}

// normalize collapses runs of whitespace so gofmt alignment does not matter
func normalize(src []byte) string {
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

func TestGenerateConstants(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	code := GenerateConstants(layouts["Point"])
	assert.Contains(t, code, "// Point layout: <Layout| size:24, align:8>")
	assert.Contains(t, code, "\tPointSize = 24\n")
	assert.Contains(t, code, "\tPointAlign = 8\n")
	assert.Contains(t, code, "\tPointXOffset = 0\n")
	assert.Contains(t, code, "\tPointFlagOffset = 8\n")
	assert.Contains(t, code, "\tPointYOffset = 16\n")
}

func TestGenerateConstantsUnexported(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	code := GenerateConstants(layouts["node"])
	assert.Contains(t, code, "\tnodeSize = 16\n")
	assert.Contains(t, code, "\tnodeIdOffset = 0\n")
	assert.Contains(t, code, "\tnodeValOffset = 8\n")
	assert.NotContains(t, code, "node_Offset")
}

func TestGenerateAssertions(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	code := GenerateAssertions(layouts["Point"])
	assert.Contains(t, code, "func _() {\n")
	assert.Contains(t, code, "\tvar x [1]struct{}\n")
	assert.Contains(t, code, "\t_ = x[unsafe.Sizeof(Point{})-24]\n")
	assert.Contains(t, code, "\t_ = x[unsafe.Alignof(Point{})-8]\n")
	assert.Contains(t, code, "\t_ = x[unsafe.Offsetof(Point{}.Flag)-8]\n")
	assert.Contains(t, code, "\t_ = x[unsafe.Offsetof(Point{}.Y)-16]\n")

	code = GenerateAssertions(layouts["node"])
	assert.NotContains(t, code, "node{}._")
}

func TestCheckable(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	tests := []struct {
		name string
		want bool
	}{
		{"Point", true},
		{"node", true},
		{"Wire", false},   // packed
		{"Line", false},   // raised struct alignment
		{"Tagged", false}, // raised field alignment
		{"Frame", false},   // holds a packed struct
		{"Segment", false}, // array of an over-aligned struct
		{"Ref", true},      // only pointers to them
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Contains(t, layouts, tc.name)
			assert.Equal(t, tc.want, Checkable(layouts[tc.name]))
		})
	}
}

func TestGenerateFile(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	gen := NewGenerator("shapes")
	for _, name := range []string{"Point", "Wire", "Line"} {
		require.NoError(t, gen.Add(layouts[name]))
	}

	src, err := gen.Generate()
	require.NoError(t, err)

	code := normalize(src)
	assert.True(t, strings.HasPrefix(code, "// Code generated by memlayout. DO NOT EDIT.\n"))
	assert.Contains(t, code, "package shapes\n")
	assert.Contains(t, code, "import \"unsafe\"\n")

	assert.Contains(t, code, "PointSize = 24")
	assert.Contains(t, code, "WireSize = 5")
	assert.Contains(t, code, "WireAlign = 1")
	assert.Contains(t, code, "WireLenOffset = 1")
	assert.Contains(t, code, "LineSize = 64")
	assert.Contains(t, code, "LineAlign = 64")

	assert.Contains(t, code, "unsafe.Sizeof(Point{})")
	assert.NotContains(t, code, "unsafe.Sizeof(Wire{})")
	assert.NotContains(t, code, "unsafe.Sizeof(Line{})")

	// The output is valid Go
	_, err = parser.ParseFile(token.NewFileSet(), "shapes_layout.go", src, parser.AllErrors)
	require.NoError(t, err)
}

func TestGenerateNestedAnnotatedLayouts(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	gen := NewGenerator("shapes")
	for _, name := range []string{"Wire", "Frame", "Segment", "Ref"} {
		require.NoError(t, gen.Add(layouts[name]))
	}

	src, err := gen.Generate()
	require.NoError(t, err)

	code := normalize(src)
	assert.Contains(t, code, "FrameSize = 16")
	assert.Contains(t, code, "FrameSeqOffset = 8")
	assert.Contains(t, code, "SegmentSize = 128")
	assert.Contains(t, code, "SegmentAlign = 64")

	// Go lays these out differently, so no compile-time checks
	assert.NotContains(t, code, "unsafe.Sizeof(Frame{})")
	assert.NotContains(t, code, "unsafe.Sizeof(Segment{})")
	assert.Contains(t, code, "unsafe.Sizeof(Ref{})")
}

func TestGenerateNameCollisions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "fields differing in case",
			src: `package p

// @layout
type Pair struct {
	a uint8
	A uint8
}
`,
			want: "offset of Pair.a and offset of Pair.A both declare PairAOffset",
		},
		{
			name: "type named like a constant",
			src: `package p

// @layout
type P struct {
	a uint8
}

// @layout
type PSize struct {
	b uint8
}
`,
			want: "P size and type PSize both declare PSize",
		},
		{
			name: "offset constant named like a type",
			src: `package p

// @layout
type A struct {
	b uint8
}

// @layout
type ABOffset struct {
	c uint8
}
`,
			want: "offset of A.b and type ABOffset both declare ABOffset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := layoutparser.ParseSource("p.go", tt.src, layoutparser.Options{})
			require.NoError(t, err)
			layouts, err := analyzer.AnalyzeAll(file, analyzer.NewTypeRegistry())
			require.NoError(t, err)

			gen := NewGenerator("p")
			var addErr error
			for _, a := range layouts {
				if addErr = gen.Add(a); addErr != nil {
					break
				}
			}
			require.Error(t, addErr)
			assert.Contains(t, addErr.Error(), tt.want)
		})
	}

	// A rejected layout leaves the queued ones intact
	file, err := layoutparser.ParseSource("p.go", tests[1].src, layoutparser.Options{})
	require.NoError(t, err)
	layouts, err := analyzer.AnalyzeAll(file, analyzer.NewTypeRegistry())
	require.NoError(t, err)

	gen := NewGenerator("p")
	require.NoError(t, gen.Add(layouts[0]))
	require.Error(t, gen.Add(layouts[1]))
	src, err := gen.Generate()
	require.NoError(t, err)
	assert.Contains(t, normalize(src), "PSize = 1")
	assert.NotContains(t, normalize(src), "PSizeSize")
}

func TestGenerateWithoutAssertions(t *testing.T) {
	layouts := analyzeSource(t, shapesSrc)

	gen := NewGenerator("shapes")
	require.NoError(t, gen.Add(layouts["Wire"]))

	src, err := gen.Generate()
	require.NoError(t, err)
	assert.NotContains(t, string(src), "unsafe")
}

func TestGenerateErrors(t *testing.T) {
	gen := NewGenerator("shapes")
	require.Error(t, gen.Add(nil))

	invalid := &analyzer.AnalyzedLayout{TypeName: "Bad", Errors: []string{"X: unknown type"}}
	err := gen.Add(invalid)
	require.ErrorContains(t, err, "Bad")

	_, err = NewGenerator("").Generate()
	require.Error(t, err)
}
