package symbols

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"keystone/internal/source"
)

// ErrNotFound is returned when a dotted member path does not resolve.
var ErrNotFound = errors.New("symbol not found")

// SymbolID identifies a symbol inside a Tree arena.
type SymbolID uint32

const (
	// NoSymbolID marks the absence of a symbol reference.
	NoSymbolID SymbolID = 0
)

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Intrinsic is a unary tag carried by a symbol's declared shape.
type Intrinsic uint8

const (
	// IntrinsicPure marks a region that must not touch platform built-ins.
	IntrinsicPure Intrinsic = 1 << iota
)

// Symbol is a named architectural region.
type Symbol struct {
	ID         SymbolID
	Name       string
	Path       string // dotted path from the tree root; "" for the root itself
	Location   source.Location
	Kind       string // declared kind name, may be empty
	Intrinsics Intrinsic
	Parent     SymbolID
	Children   []SymbolID
	Decl       source.Ref
}

// IsRoot reports whether the symbol is the tree root.
func (s *Symbol) IsRoot() bool { return !s.Parent.IsValid() }

// Spec describes a symbol to be added to a Tree.
type Spec struct {
	Name       string
	Location   source.Location
	Kind       string
	Intrinsics Intrinsic
	Decl       source.Ref
}

// Tree is an arena of symbols. Index 0 is a sentinel, index 1 is the root.
// Pointers returned by Get stay valid until the next Add.
type Tree struct {
	data []Symbol
}

// NewTree allocates a tree whose root is described by root.
func NewTree(root Spec) *Tree {
	t := &Tree{data: make([]Symbol, 1, 16)}
	t.data = append(t.data, Symbol{
		ID:         1,
		Name:       root.Name,
		Location:   root.Location,
		Kind:       root.Kind,
		Intrinsics: root.Intrinsics,
		Decl:       root.Decl,
	})
	return t
}

// Name returns the root symbol name.
func (t *Tree) Name() string { return t.Root().Name }

// Root returns the root symbol.
func (t *Tree) Root() *Symbol { return &t.data[1] }

// Len reports the number of symbols excluding the sentinel.
func (t *Tree) Len() int { return len(t.data) - 1 }

// Get returns a symbol pointer or nil for an invalid ID.
func (t *Tree) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.data) {
		return nil
	}
	return &t.data[id]
}

// Add allocates a child of parent. Sibling names must be unique.
func (t *Tree) Add(parent SymbolID, spec Spec) (SymbolID, error) {
	p := t.Get(parent)
	if p == nil {
		return NoSymbolID, fmt.Errorf("symbols: invalid parent %d", parent)
	}
	if spec.Name == "" || strings.Contains(spec.Name, ".") {
		return NoSymbolID, fmt.Errorf("symbols: invalid member name %q", spec.Name)
	}
	for _, child := range p.Children {
		if t.data[child].Name == spec.Name {
			return NoSymbolID, fmt.Errorf("symbols: duplicate member %q in %q", spec.Name, t.displayPath(parent))
		}
	}
	value, err := safecast.Conv[uint32](len(t.data))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	id := SymbolID(value)
	path := spec.Name
	if p.Path != "" {
		path = p.Path + "." + spec.Name
	}
	t.data = append(t.data, Symbol{
		ID:         id,
		Name:       spec.Name,
		Path:       path,
		Location:   spec.Location,
		Kind:       spec.Kind,
		Intrinsics: spec.Intrinsics,
		Parent:     parent,
		Decl:       spec.Decl,
	})
	// append could have moved the arena
	p = &t.data[parent]
	p.Children = append(p.Children, id)
	return id, nil
}

// FindByPath resolves a dotted member path relative to from.
// An empty path resolves to from itself.
func (t *Tree) FindByPath(from SymbolID, dotted string) (*Symbol, error) {
	cur := t.Get(from)
	if cur == nil {
		return nil, fmt.Errorf("symbols: invalid start symbol %d", from)
	}
	dotted = strings.TrimSpace(dotted)
	if dotted == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(dotted, ".") {
		next := NoSymbolID
		for _, child := range cur.Children {
			if t.data[child].Name == seg {
				next = child
				break
			}
		}
		if !next.IsValid() {
			return nil, fmt.Errorf("%w: %q in %q", ErrNotFound, dotted, t.displayPath(from))
		}
		cur = &t.data[next]
	}
	return cur, nil
}

// Walk visits symbols in pre-order, children in declaration order.
// Returning false from fn skips the symbol's descendants.
func (t *Tree) Walk(fn func(*Symbol) bool) {
	stack := []SymbolID{1}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sym := &t.data[id]
		if !fn(sym) {
			continue
		}
		for i := len(sym.Children) - 1; i >= 0; i-- {
			stack = append(stack, sym.Children[i])
		}
	}
}

// Descendants returns every symbol below id in pre-order.
func (t *Tree) Descendants(id SymbolID) []*Symbol {
	start := t.Get(id)
	if start == nil {
		return nil
	}
	var out []*Symbol
	stack := append([]SymbolID(nil), start.Children...)
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sym := &t.data[cur]
		out = append(out, sym)
		for i := len(sym.Children) - 1; i >= 0; i-- {
			stack = append(stack, sym.Children[i])
		}
	}
	return out
}

// Owner returns the deepest symbol whose location matches file.
func (t *Tree) Owner(file string) *Symbol {
	var best *Symbol
	depth := -1
	t.Walk(func(s *Symbol) bool {
		if !s.Location.Matches(file) {
			return false
		}
		if d := t.depth(s.ID); d > depth {
			best, depth = s, d
		}
		return true
	})
	return best
}

// Overlap describes two siblings whose locations share files.
type Overlap struct {
	A, B SymbolID
}

// Overlaps lists sibling pairs with overlapping locations.
func (t *Tree) Overlaps() []Overlap {
	var out []Overlap
	t.Walk(func(s *Symbol) bool {
		for i := 0; i < len(s.Children); i++ {
			for j := i + 1; j < len(s.Children); j++ {
				a, b := &t.data[s.Children[i]], &t.data[s.Children[j]]
				if a.Location.Overlaps(b.Location) {
					out = append(out, Overlap{A: a.ID, B: b.ID})
				}
			}
		}
		return true
	})
	return out
}

// DisplayPath returns the dotted path prefixed with the tree name.
func (t *Tree) DisplayPath(id SymbolID) string { return t.displayPath(id) }

func (t *Tree) displayPath(id SymbolID) string {
	s := t.Get(id)
	if s == nil {
		return "?"
	}
	if s.Path == "" {
		return t.Name()
	}
	return t.Name() + "." + s.Path
}

func (t *Tree) depth(id SymbolID) int {
	d := 0
	for cur := t.Get(id); cur != nil && cur.Parent.IsValid(); cur = t.Get(cur.Parent) {
		d++
	}
	return d
}
