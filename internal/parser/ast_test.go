package parser

import (
	"testing"
)

func TestParseFile(t *testing.T) {
	file, err := ParseFile("testdata/simple.go", Options{})
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if file.Package != "testdata" {
		t.Errorf("Package = %q, want %q", file.Package, "testdata")
	}

	// IgnoredType has no @layout annotation
	if len(file.Types) != 3 {
		t.Fatalf("ParseFile() found %d types, want 3", len(file.Types))
	}

	leaf := file.Types[0]
	if leaf.Name != "LeafElement" {
		t.Errorf("types[0].Name = %q, want %q", leaf.Name, "LeafElement")
	}
	if leaf.Anno.Size != 16 {
		t.Errorf("LeafElement.Anno.Size = %d, want 16", leaf.Anno.Size)
	}
	if len(leaf.Fields) != 4 {
		t.Fatalf("LeafElement has %d fields, want 4", len(leaf.Fields))
	}

	f0 := leaf.Fields[0]
	if f0.Name != "Key" || f0.GoType != "uint32" {
		t.Errorf("fields[0] = %s %s, want Key uint32", f0.Name, f0.GoType)
	}
	if f0.Layout.Offset != 0 {
		t.Errorf("fields[0].Layout.Offset = %d, want 0", f0.Layout.Offset)
	}

	f1 := leaf.Fields[1]
	if f1.Layout.Offset != -1 || f1.Layout.Align != 0 {
		t.Errorf("untagged field layout = %+v, want default", *f1.Layout)
	}

	header := file.Types[1]
	if header.Anno.Align != 64 {
		t.Errorf("LeafHeader.Anno.Align = %d, want 64", header.Anno.Align)
	}
	if header.Fields[1].Layout.Align != 16 {
		t.Errorf("NextPage align = %d, want 16", header.Fields[1].Layout.Align)
	}

	wire := file.Types[2]
	if !wire.Anno.Packed {
		t.Errorf("WireHeader.Anno.Packed = false, want true")
	}
	if wire.Fields[0].GoType != "[4]byte" {
		t.Errorf("WireHeader.Magic type = %q, want [4]byte", wire.Fields[0].GoType)
	}

	// Kept aside so annotated structs can still embed it
	if len(file.Unannotated) != 1 || file.Unannotated[0].Name != "IgnoredType" {
		t.Fatalf("Unannotated = %v, want [IgnoredType]", file.Unannotated)
	}
	if got := file.Unannotated[0].Fields[0].GoType; got != "uint32" {
		t.Errorf("IgnoredType.Field type = %q, want uint32", got)
	}

	if len(file.Errors) != 0 {
		t.Errorf("unexpected errors: %v", file.Errors)
	}
}

func TestParseFileAllStructs(t *testing.T) {
	file, err := ParseFile("testdata/simple.go", Options{AllStructs: true})
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if len(file.Types) != 4 {
		t.Fatalf("ParseFile() found %d types, want 4", len(file.Types))
	}
	ignored := file.Types[3]
	if ignored.Name != "IgnoredType" {
		t.Errorf("types[3].Name = %q, want IgnoredType", ignored.Name)
	}
	if ignored.Anno == nil || ignored.Anno.Packed || ignored.Anno.Size != 0 {
		t.Errorf("IgnoredType should get a default annotation, got %+v", ignored.Anno)
	}
}

func TestParseFileComplex(t *testing.T) {
	file, err := ParseFile("testdata/complex.go", Options{})
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if got := file.Aliases["PageID"]; got != "uint64" {
		t.Errorf("Aliases[PageID] = %q, want uint64", got)
	}
	if got := file.Aliases["Key"]; got != "[16]byte" {
		t.Errorf("Aliases[Key] = %q, want [16]byte", got)
	}

	// Page, Shard and BadTag; Broken has a malformed annotation and
	// Generic is skipped
	names := make([]string, 0, len(file.Types))
	for _, tl := range file.Types {
		names = append(names, tl.Name)
	}
	if len(names) != 3 || names[0] != "Page" || names[1] != "Shard" || names[2] != "BadTag" {
		t.Fatalf("types = %v, want [Page Shard BadTag]", names)
	}

	page := file.Types[0]
	if page.Fields[1].GoType != "[256]byte" {
		t.Errorf("Page.Data type = %q, want [256]byte (constant resolved)", page.Fields[1].GoType)
	}

	shard := file.Types[1]
	want := []struct {
		name, goType string
		embedded     bool
	}{
		{"Mutex", "sync.Mutex", true},
		{"_", "cpu.CacheLinePad", false},
		{"x", "int32", false},
		{"y", "int32", false},
		{"names", "map[string]*Page", false},
		{"done", "chan struct{}", false},
		{"keys", "[]Key", false},
		{"stop", "func", false},
		{"err", "error", false},
		{"empty", "struct{}", false},
	}
	if len(shard.Fields) != len(want) {
		t.Fatalf("Shard has %d fields, want %d", len(shard.Fields), len(want))
	}
	for i, w := range want {
		f := shard.Fields[i]
		if f.Name != w.name || f.GoType != w.goType || f.Embedded != w.embedded {
			t.Errorf("fields[%d] = {%s %s %v}, want {%s %s %v}",
				i, f.Name, f.GoType, f.Embedded, w.name, w.goType, w.embedded)
		}
	}

	// Broken annotation and bad tag are both reported
	if len(file.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2 entries", file.Errors)
	}
}

func TestParseSource(t *testing.T) {
	src := `package inline

// @layout
type Pair struct {
	A, B uint16
	C    *Pair
}
`
	file, err := ParseSource("inline.go", src, Options{})
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	if len(file.Types) != 1 || len(file.Types[0].Fields) != 3 {
		t.Fatalf("ParseSource() = %+v, want one type with 3 fields", file.Types)
	}
	if file.Types[0].Fields[2].GoType != "*Pair" {
		t.Errorf("C type = %q, want *Pair", file.Types[0].Fields[2].GoType)
	}

	if _, err := ParseSource("bad.go", "package", Options{}); err == nil {
		t.Errorf("ParseSource() expected syntax error")
	}
}
