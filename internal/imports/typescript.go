package imports

import (
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
)

const tsQuery = `
(import_statement source: (string) @source) @import
(export_statement source: (string) @source) @import
(call_expression function: (_) @fn arguments: (arguments (string) @source)) @call
(interface_declaration name: (_) @name) @interface
(type_alias_declaration name: (_) @name) @alias
(class_declaration name: (_) @name) @class
(abstract_class_declaration name: (_) @name) @class
(variable_declarator name: (identifier) @name) @var
`

func extractTS(q *sitter.Query, root *sitter.Node, src []byte) *Facts {
	facts := &Facts{}
	captures(q, root, func(c map[string]*sitter.Node) {
		switch {
		case c["import"] != nil:
			line, col := position(c["import"])
			facts.Imports = append(facts.Imports, Spec{Module: unquote(c["source"].Content(src)), Line: line, Col: col})
		case c["call"] != nil:
			if spec, ok := tsCall(c["call"], c["fn"], c["source"], src); ok {
				facts.Imports = append(facts.Imports, spec)
			}
		case c["interface"] != nil:
			d := tsDecl(DeclInterface, c["interface"], c["name"], src)
			d.Methods = tsInterfaceMethods(c["interface"], src)
			facts.Decls = append(facts.Decls, d)
		case c["alias"] != nil:
			facts.Decls = append(facts.Decls, tsDecl(DeclInterface, c["alias"], c["name"], src))
		case c["class"] != nil:
			d := tsDecl(DeclClass, c["class"], c["name"], src)
			d.Implements = tsImplements(c["class"], src)
			facts.Decls = append(facts.Decls, d)
		case c["var"] != nil:
			if d, ok := tsValue(c["var"], c["name"], src); ok {
				facts.Decls = append(facts.Decls, d)
			}
		}
	})
	sortFacts(facts)
	return facts
}

// tsCall accepts require("x") and import("x") with the string as first argument.
func tsCall(call, fn, lit *sitter.Node, src []byte) (Spec, bool) {
	if fn == nil || lit == nil {
		return Spec{}, false
	}
	switch {
	case fn.Type() == "import":
	case fn.Type() == "identifier" && fn.Content(src) == "require":
	default:
		return Spec{}, false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 || args.NamedChild(0).StartByte() != lit.StartByte() {
		return Spec{}, false
	}
	line, col := position(call)
	return Spec{Module: unquote(lit.Content(src)), Line: line, Col: col}, true
}

// tsDecl positions the declaration at its export keyword when exported.
func tsDecl(kind DeclKind, node, name *sitter.Node, src []byte) Decl {
	at := node
	exported := false
	if p := node.Parent(); p != nil && p.Type() == "export_statement" {
		at, exported = p, true
	}
	line, col := position(at)
	return Decl{Kind: kind, Name: name.Content(src), Exported: exported, Line: line, Col: col}
}

func tsInterfaceMethods(node *sitter.Node, src []byte) []string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_signature", "property_signature":
			if n := member.ChildByFieldName("name"); n != nil {
				out = append(out, n.Content(src))
			}
		}
	}
	return out
}

func tsImplements(class *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(class.NamedChildCount()); i++ {
		heritage := class.NamedChild(i)
		if heritage.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(heritage.NamedChildCount()); j++ {
			clause := heritage.NamedChild(j)
			if clause.Type() != "implements_clause" {
				continue
			}
			for k := 0; k < int(clause.NamedChildCount()); k++ {
				if name := typeName(clause.NamedChild(k).Content(src)); name != "" {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// tsValue recognises `const a: X = ...`, `const a = make<X>(...)` and
// `const a = {...} satisfies X`. Only top-level declarators count.
func tsValue(decl, name *sitter.Node, src []byte) (Decl, bool) {
	stmt := decl.Parent()
	if stmt == nil {
		return Decl{}, false
	}
	top := stmt
	if p := stmt.Parent(); p != nil && p.Type() == "export_statement" {
		top = p
	}
	if p := top.Parent(); p == nil || p.Type() != "program" {
		return Decl{}, false
	}
	typ := ""
	if t := decl.ChildByFieldName("type"); t != nil {
		typ = typeName(t.Content(src))
	} else if v := decl.ChildByFieldName("value"); v != nil {
		switch v.Type() {
		case "call_expression":
			if targs := v.ChildByFieldName("type_arguments"); targs != nil && targs.NamedChildCount() > 0 {
				typ = typeName(targs.NamedChild(0).Content(src))
			}
		case "satisfies_expression":
			if n := v.NamedChildCount(); n > 1 {
				typ = typeName(v.NamedChild(int(n) - 1).Content(src))
			}
		}
	}
	if typ == "" {
		return Decl{}, false
	}
	line, col := position(top)
	return Decl{
		Kind:     DeclValue,
		Name:     name.Content(src),
		Exported: top.Type() == "export_statement",
		TypeName: typ,
		Line:     line,
		Col:      col,
	}, true
}

// sortFacts restores source order; query matches interleave patterns.
func sortFacts(f *Facts) {
	slices.SortStableFunc(f.Imports, func(a, b Spec) int {
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		return int(a.Col) - int(b.Col)
	})
	slices.SortStableFunc(f.Decls, func(a, b Decl) int {
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		return int(a.Col) - int(b.Col)
	})
}
