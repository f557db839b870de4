// Package imports supplies the import graph and top-level declarations of
// project source files. Extraction is tree-sitter based; resolution of
// specifiers to project paths and per-run memoisation live in Resolver and
// Index.
package imports

import (
	"context"

	"keystone/internal/source"
)

// Spec is one statically imported module specifier.
type Spec struct {
	Module   string // as written, without quotes
	Resolved string `msgpack:"-"` // project-relative path, "" when external
	Line     uint32 // 1-based
	Col      uint32 // 0-based
}

// Ref returns the import position inside file.
func (s Spec) Ref(file string) source.Ref {
	return source.At(file, s.Line, s.Col)
}

// DeclKind classifies top-level declarations relevant to mustImplement.
type DeclKind uint8

const (
	DeclInterface DeclKind = iota + 1
	DeclClass
	DeclValue
	DeclMethod
)

func (k DeclKind) String() string {
	switch k {
	case DeclInterface:
		return "interface"
	case DeclClass:
		return "class"
	case DeclValue:
		return "value"
	case DeclMethod:
		return "method"
	}
	return "unknown"
}

// Decl is a top-level declaration.
type Decl struct {
	Kind       DeclKind
	Name       string
	Exported   bool
	Implements []string // class: names listed in `implements`
	TypeName   string   // value: declared type; method: receiver type
	Methods    []string // interface: method names
	Line       uint32
	Col        uint32
}

// Ref returns the declaration position inside file.
func (d Decl) Ref(file string) source.Ref {
	return source.At(file, d.Line, d.Col)
}

// Provider returns the import specifiers of one file in source order.
type Provider interface {
	Imports(ctx context.Context, file string) ([]Spec, error)
}

// DeclProvider returns the top-level declarations of one file.
type DeclProvider interface {
	Declarations(ctx context.Context, file string) ([]Decl, error)
}

// Static is an in-memory provider keyed by file path.
type Static struct {
	Specs map[string][]Spec
	Decls map[string][]Decl
}

func (s Static) Imports(_ context.Context, file string) ([]Spec, error) {
	return append([]Spec(nil), s.Specs[file]...), nil
}

func (s Static) Declarations(_ context.Context, file string) ([]Decl, error) {
	return append([]Decl(nil), s.Decls[file]...), nil
}
