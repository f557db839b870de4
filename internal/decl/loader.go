package decl

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"keystone/internal/diag"
	"keystone/internal/generate"
	"keystone/internal/source"
	"keystone/internal/symbols"
)

type kindDecl struct {
	name        string
	intrinsics  symbols.Intrinsic
	constraints *yaml.Node
}

type loader struct {
	reg   *generate.Registry
	file  string
	kinds map[string]*kindDecl
	errs  []generate.DefinitionError
}

// shape is the parsed body of a member or architecture.
type shape struct {
	location    string
	hasLocation bool
	kind        *yaml.Node
	members     *yaml.Node
	constraints *yaml.Node
	flags       []generate.Entry // pure: true written directly on the member
}

func (l *loader) at(n *yaml.Node) source.Ref {
	// yaml columns are 1-based, refs are 0-based
	return source.AtInt(l.file, n.Line, n.Column-1)
}

func (l *loader) errorf(code diag.Code, n *yaml.Node, format string, args ...any) {
	l.errs = append(l.errs, generate.DefinitionError{
		Code: code,
		At:   l.at(n),
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (l *loader) loadKinds(n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		l.errorf(diag.DefMalformedValue, n, "kinds must be a mapping")
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, body := n.Content[i], n.Content[i+1]
		k := &kindDecl{name: name.Value}
		if body.Kind != yaml.MappingNode {
			l.errorf(diag.DefMalformedValue, body, "kind %s must be a mapping", name.Value)
			continue
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			key, v := body.Content[j], body.Content[j+1]
			if key.Value == "constraints" {
				k.constraints = v
				continue
			}
			in, ok := l.reg.IntrinsicFor(key.Value)
			if !ok {
				l.errorf(diag.DefUnknownKind, key, "kind %s: unknown intrinsic %q", name.Value, key.Value)
				continue
			}
			on, ok := l.boolean(v)
			if !ok {
				l.errorf(diag.DefMalformedValue, v, "%s: expected a boolean", key.Value)
				continue
			}
			if on {
				k.intrinsics |= in.Flag
			}
		}
		l.kinds[k.name] = k
	}
}

func (l *loader) boolean(n *yaml.Node) (value, ok bool) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false, false
	}
	if err := n.Decode(&value); err != nil {
		return false, false
	}
	return value, true
}

func (l *loader) shape(body *yaml.Node) shape {
	var s shape
	switch body.Kind {
	case yaml.ScalarNode:
		if body.ShortTag() != "!!null" {
			s.location, s.hasLocation = body.Value, true
		}
		return s
	case yaml.MappingNode:
	default:
		l.errorf(diag.DefMalformedValue, body, "expected a location or a mapping")
		return s
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		switch k.Value {
		case "location":
			if v.Kind != yaml.ScalarNode {
				l.errorf(diag.DefMalformedValue, v, "location must be a string")
				continue
			}
			s.location, s.hasLocation = v.Value, true
		case "kind":
			if v.Kind != yaml.ScalarNode {
				l.errorf(diag.DefMalformedValue, v, "kind must be a name")
				continue
			}
			s.kind = v
		case "members":
			if v.Kind != yaml.MappingNode {
				l.errorf(diag.DefMalformedValue, v, "members must be a mapping")
				continue
			}
			s.members = v
		case "constraints":
			s.constraints = v
		default:
			if _, ok := l.reg.IntrinsicFor(k.Value); ok {
				s.flags = append(s.flags, generate.Entry{Kind: k.Value, Value: l.value(v), At: l.at(k)})
				continue
			}
			l.errorf(diag.DefMalformedValue, k, "unknown member key %q", k.Value)
		}
	}
	return s
}

func (l *loader) architecture(name, body *yaml.Node) Architecture {
	s := l.shape(body)
	loc := source.Location{}
	if s.hasLocation {
		loc = source.NewLocation(s.location)
	}
	kind, intrinsics, kindEntries := l.resolveKind(s.kind)
	tree := symbols.NewTree(symbols.Spec{
		Name:       name.Value,
		Location:   loc,
		Kind:       kind,
		Intrinsics: intrinsics,
		Decl:       l.at(name),
	})
	cfg := make(generate.Config)
	root := tree.Root().ID
	cfg[root] = l.symbolEntries(kindEntries, s)
	l.members(tree, cfg, root, loc, s.members)
	return Architecture{Tree: tree, Config: cfg}
}

func (l *loader) members(tree *symbols.Tree, cfg generate.Config, parent symbols.SymbolID, parentLoc source.Location, n *yaml.Node) {
	if n == nil {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, body := n.Content[i], n.Content[i+1]
		s := l.shape(body)
		rel := name.Value
		if s.hasLocation {
			rel = s.location
		}
		loc := parentLoc.Join(rel)
		kind, intrinsics, kindEntries := l.resolveKind(s.kind)
		id, err := tree.Add(parent, symbols.Spec{
			Name:       name.Value,
			Location:   loc,
			Kind:       kind,
			Intrinsics: intrinsics,
			Decl:       l.at(name),
		})
		if err != nil {
			l.errorf(diag.DefMalformedValue, name, "%v", err)
			continue
		}
		if entries := l.symbolEntries(kindEntries, s); len(entries) > 0 {
			cfg[id] = entries
		}
		l.members(tree, cfg, id, loc, s.members)
	}
}

// resolveKind looks up a member's declared kind. Unknown names are reported
// and the member is kept without a kind.
func (l *loader) resolveKind(n *yaml.Node) (string, symbols.Intrinsic, []generate.Entry) {
	if n == nil {
		return "", 0, nil
	}
	k, ok := l.kinds[n.Value]
	if !ok {
		l.errorf(diag.DefUnknownKind, n, "unknown kind %q", n.Value)
		return "", 0, nil
	}
	return k.name, k.intrinsics, l.entries(k.constraints)
}

func (l *loader) symbolEntries(fromKind []generate.Entry, s shape) []generate.Entry {
	out := append([]generate.Entry(nil), fromKind...)
	out = append(out, s.flags...)
	return append(out, l.entries(s.constraints)...)
}

func (l *loader) entries(n *yaml.Node) []generate.Entry {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		l.errorf(diag.DefMalformedValue, n, "constraints must be a mapping")
		return nil
	}
	out := make([]generate.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		out = append(out, generate.Entry{Kind: k.Value, Value: l.value(v), At: l.at(k)})
	}
	return out
}

// value converts a yaml node into a raw constraint value.
func (l *loader) value(n *yaml.Node) generate.Value {
	at := l.at(n)
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias != nil {
			return l.value(n.Alias)
		}
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return generate.Value{At: at}
		case "!!bool":
			if b, ok := l.boolean(n); ok {
				return generate.Bool(b, at)
			}
		}
		return generate.String(n.Value, at)
	case yaml.SequenceNode:
		items := make([]generate.Value, 0, len(n.Content))
		for _, c := range n.Content {
			items = append(items, l.value(c))
		}
		return generate.List(at, items...)
	case yaml.MappingNode:
		fields := make([]generate.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			fields = append(fields, generate.Field{Key: n.Content[i].Value, Value: l.value(n.Content[i+1])})
		}
		return generate.Map(at, fields...)
	}
	return generate.Value{At: at}
}
