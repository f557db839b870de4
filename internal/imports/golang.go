package imports

import (
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

const goQuery = `
(import_spec path: (_) @path) @import
(type_spec name: (type_identifier) @name type: (_) @type) @typespec
(var_spec) @var
(method_declaration receiver: (parameter_list) @recv name: (field_identifier) @name) @method
`

func extractGo(q *sitter.Query, root *sitter.Node, src []byte) *Facts {
	facts := &Facts{}
	captures(q, root, func(c map[string]*sitter.Node) {
		switch {
		case c["import"] != nil:
			line, col := position(c["import"])
			facts.Imports = append(facts.Imports, Spec{Module: unquote(c["path"].Content(src)), Line: line, Col: col})
		case c["typespec"] != nil:
			if d, ok := goType(c["typespec"], c["name"], c["type"], src); ok {
				facts.Decls = append(facts.Decls, d)
			}
		case c["var"] != nil:
			facts.Decls = append(facts.Decls, goVar(c["var"], src)...)
		case c["method"] != nil:
			name := c["name"].Content(src)
			line, col := position(c["method"])
			facts.Decls = append(facts.Decls, Decl{
				Kind:     DeclMethod,
				Name:     name,
				Exported: goExported(name),
				TypeName: goReceiver(c["recv"], src),
				Line:     line,
				Col:      col,
			})
		}
	})
	sortFacts(facts)
	return facts
}

func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func goType(spec, name, typ *sitter.Node, src []byte) (Decl, bool) {
	n := name.Content(src)
	line, col := position(spec)
	d := Decl{Name: n, Exported: goExported(n), Line: line, Col: col}
	switch typ.Type() {
	case "interface_type":
		d.Kind = DeclInterface
		for i := 0; i < int(typ.NamedChildCount()); i++ {
			elem := typ.NamedChild(i)
			// method_spec в старых грамматиках, method_elem в новых
			if elem.Type() != "method_spec" && elem.Type() != "method_elem" {
				continue
			}
			if m := elem.ChildByFieldName("name"); m != nil {
				d.Methods = append(d.Methods, m.Content(src))
			}
		}
	case "struct_type":
		d.Kind = DeclClass
	default:
		return Decl{}, false
	}
	return d, true
}

// goVar records `var _ ports.Repo = (*repo)(nil)` style assertions.
func goVar(spec *sitter.Node, src []byte) []Decl {
	typ := spec.ChildByFieldName("type")
	if typ == nil {
		return nil
	}
	tn := typeName(typ.Content(src))
	line, col := position(spec)
	var out []Decl
	for i := 0; i < int(spec.NamedChildCount()); i++ {
		child := spec.NamedChild(i)
		if child.Type() != "identifier" && child.Type() != "blank_identifier" {
			continue
		}
		name := child.Content(src)
		out = append(out, Decl{
			Kind:     DeclValue,
			Name:     name,
			Exported: goExported(name),
			TypeName: tn,
			Line:     line,
			Col:      col,
		})
	}
	return out
}

func goReceiver(recv *sitter.Node, src []byte) string {
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		if t := param.ChildByFieldName("type"); t != nil {
			return typeName(t.Content(src))
		}
	}
	return ""
}
