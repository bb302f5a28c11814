package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// File is the result of parsing one Go source file
type File struct {
	Package string
	Types   []*TypeLayout
	// Unannotated holds structs without @layout when Options.AllStructs is
	// off. They are not reported but annotated structs may embed them.
	Unannotated []*TypeLayout
	Aliases     map[string]string // defined or alias type name → underlying type
	Errors      []string          // malformed annotations and tags
}

// TypeLayout represents a parsed struct declaration
type TypeLayout struct {
	Name   string
	Anno   *TypeAnnotation
	Fields []Field
}

// Field represents a struct field
type Field struct {
	Name     string
	GoType   string
	Embedded bool
	Layout   *FieldLayout
}

// Options controls which declarations are extracted
type Options struct {
	// AllStructs includes structs without a @layout annotation
	AllStructs bool
}

// ParseFile parses a Go source file and extracts its struct types
func ParseFile(filename string, opts Options) (*File, error) {
	return ParseSource(filename, nil, opts)
}

// ParseSource parses src (string, []byte, io.Reader or nil to read filename)
func ParseSource(filename string, src any, opts Options) (*File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return extractFile(file, opts), nil
}

type extractor struct {
	opts      Options
	constants map[string]string
	out       *File
}

func extractFile(file *ast.File, opts Options) *File {
	x := &extractor{
		opts:      opts,
		constants: collectConstants(file),
		out: &File{
			Package: file.Name.Name,
			Aliases: make(map[string]string),
		},
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			x.extractType(genDecl, spec.(*ast.TypeSpec))
		}
	}

	return x.out
}

func (x *extractor) extractType(genDecl *ast.GenDecl, typeSpec *ast.TypeSpec) {
	if typeSpec.TypeParams != nil {
		return // Generic types have no single layout
	}

	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		// type PageID uint64, type Key = [16]byte
		x.out.Aliases[typeSpec.Name.Name] = x.typeToString(typeSpec.Type)
		return
	}

	// Grouped declarations carry the comment on the spec
	doc := typeSpec.Doc
	if doc == nil {
		doc = genDecl.Doc
	}

	anno, err := extractAnnotation(doc)
	if err != nil {
		x.out.Errors = append(x.out.Errors, fmt.Sprintf("%s: %v", typeSpec.Name.Name, err))
		return
	}
	dst := &x.out.Types
	if anno == nil {
		if !x.opts.AllStructs {
			dst = &x.out.Unannotated
		}
		anno = &TypeAnnotation{}
	}

	*dst = append(*dst, &TypeLayout{
		Name:   typeSpec.Name.Name,
		Anno:   anno,
		Fields: x.extractFields(typeSpec.Name.Name, structType),
	})
}

func extractAnnotation(doc *ast.CommentGroup) (*TypeAnnotation, error) {
	if doc == nil {
		return nil, nil
	}

	var lines []string
	for _, comment := range doc.List {
		lines = append(lines, CleanComment(comment.Text))
	}

	anno, found, err := FindAnnotation(lines)
	if !found {
		return nil, nil
	}
	return anno, err
}

func (x *extractor) extractFields(typeName string, structType *ast.StructType) []Field {
	var fields []Field

	for _, field := range structType.Fields.List {
		fieldLayout := DefaultFieldLayout()
		if field.Tag != nil {
			tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
			if layoutTag, ok := tag.Lookup("layout"); ok {
				parsed, err := ParseTag(layoutTag)
				if err != nil {
					x.out.Errors = append(x.out.Errors, fmt.Sprintf("%s.%s: %v",
						typeName, fieldName(field), err))
				} else {
					fieldLayout = parsed
				}
			}
		}

		goType := x.typeToString(field.Type)

		if len(field.Names) == 0 {
			// Embedded field: named after its type
			fields = append(fields, Field{
				Name:     embeddedName(goType),
				GoType:   goType,
				Embedded: true,
				Layout:   fieldLayout,
			})
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, Field{
				Name:   name.Name,
				GoType: goType,
				Layout: fieldLayout,
			})
		}
	}

	return fields
}

func fieldName(field *ast.Field) string {
	if len(field.Names) > 0 {
		return field.Names[0].Name
	}
	return "<embedded>"
}

// embeddedName returns the field name Go gives an embedded type
func embeddedName(goType string) string {
	name := strings.TrimPrefix(goType, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// collectConstants records integer constants so array lengths like
// [PageSize]byte can be resolved
func collectConstants(file *ast.File) map[string]string {
	consts := make(map[string]string)
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		for _, spec := range genDecl.Specs {
			valueSpec := spec.(*ast.ValueSpec)
			for i, name := range valueSpec.Names {
				if i >= len(valueSpec.Values) {
					break
				}
				lit, ok := valueSpec.Values[i].(*ast.BasicLit)
				if !ok || lit.Kind != token.INT {
					continue
				}
				if n, err := strconv.ParseInt(lit.Value, 0, 64); err == nil {
					consts[name.Name] = strconv.FormatInt(n, 10)
				}
			}
		}
	}
	return consts
}

// typeToString converts AST type expression to string
func (x *extractor) typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		// Simple type: uint16, LeafElement, etc.
		return t.Name

	case *ast.SelectorExpr:
		// Qualified type: sync.Mutex, cpu.CacheLinePad
		return x.typeToString(t.X) + "." + t.Sel.Name

	case *ast.ParenExpr:
		return x.typeToString(t.X)

	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + x.typeToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", x.exprToString(t.Len), x.typeToString(t.Elt))

	case *ast.StarExpr:
		return "*" + x.typeToString(t.X)

	case *ast.MapType:
		return fmt.Sprintf("map[%s]%s", x.typeToString(t.Key), x.typeToString(t.Value))

	case *ast.ChanType:
		return "chan " + x.typeToString(t.Value)

	case *ast.FuncType:
		return "func"

	case *ast.InterfaceType:
		return "interface{}"

	case *ast.StructType:
		if len(t.Fields.List) == 0 {
			return "struct{}"
		}
		return "unknown"

	default:
		return "unknown"
	}
}

func (x *extractor) exprToString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if n, err := strconv.ParseInt(e.Value, 0, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return e.Value
	case *ast.Ident:
		if v, ok := x.constants[e.Name]; ok {
			return v
		}
		return e.Name
	default:
		return "?"
	}
}
