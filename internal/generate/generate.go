// Package generate derives Contracts from a resolved symbol tree and the
// constraint configuration attached to its symbols.
package generate

import (
	"fmt"
	"slices"
	"strings"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/source"
	"keystone/internal/symbols"
)

// Entry is one constraint declared on a symbol.
type Entry struct {
	Kind  string
	Value Value
	At    source.Ref
}

// Config holds the constraint entries of each symbol, in declaration order.
type Config map[symbols.SymbolID][]Entry

// Result of one generation pass. Contracts are unique by ID and sorted.
type Result struct {
	Contracts []*contract.Contract
	Errors    []DefinitionError
}

func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Merge appends other (another architecture's result) and restores order.
func (r *Result) Merge(other Result) {
	r.Contracts = append(r.Contracts, other.Contracts...)
	r.Errors = append(r.Errors, other.Errors...)
	r.normalize()
}

func (r *Result) normalize() {
	seen := make(map[string]struct{}, len(r.Contracts))
	out := r.Contracts[:0]
	for _, c := range r.Contracts {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	r.Contracts = out
	slices.SortStableFunc(r.Contracts, func(a, b *contract.Contract) int {
		if c := a.Decl.Compare(b.Decl); c != 0 {
			return c
		}
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(r.Errors, func(a, b DefinitionError) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return strings.Compare(a.Msg, b.Msg)
	})
}

// Contracts runs every constraint entry of every symbol through reg.
// A tree without a root is a programming error and panics.
func Contracts(reg *Registry, tree *symbols.Tree, cfg Config) Result {
	if tree == nil || tree.Len() == 0 {
		panic("generate: tree has no root")
	}
	var res Result

	for _, ov := range tree.Overlaps() {
		a, b := tree.Get(ov.A), tree.Get(ov.B)
		res.Errors = append(res.Errors, DefinitionError{
			Code: diag.DefOverlap,
			At:   b.Decl,
			Msg: fmt.Sprintf("members %s (%s) and %s (%s) have overlapping locations",
				tree.DisplayPath(a.ID), a.Location, tree.DisplayPath(b.ID), b.Location),
		})
	}

	// marks[kind][symbol] = where the intrinsic was declared
	marks := make(map[string]map[symbols.SymbolID]source.Ref)
	mark := func(kind string, id symbols.SymbolID, at source.Ref) {
		if marks[kind] == nil {
			marks[kind] = make(map[symbols.SymbolID]source.Ref)
		}
		if _, ok := marks[kind][id]; !ok {
			marks[kind][id] = at
		}
	}

	tree.Walk(func(sym *symbols.Symbol) bool {
		for kind, in := range reg.intrinsics {
			if sym.Intrinsics&in.Flag != 0 {
				mark(kind, sym.ID, sym.Decl)
			}
		}
		for _, e := range cfg[sym.ID] {
			if gen, ok := reg.generators[e.Kind]; ok {
				site := Site{Tree: tree, Symbol: sym, Kind: e.Kind, At: e.At}
				contracts, errs := gen(e.Value, site)
				res.Contracts = append(res.Contracts, contracts...)
				res.Errors = append(res.Errors, errs...)
				continue
			}
			if _, ok := reg.intrinsics[e.Kind]; ok {
				switch {
				case e.Value.Kind != ValueBool:
					res.Errors = append(res.Errors, malformed(e.Kind, e.Value.At, "expected a boolean, got %s", e.Value.Kind))
				case e.Value.Bool:
					mark(e.Kind, sym.ID, e.At)
				}
				continue
			}
			res.Errors = append(res.Errors, unknownKind(e.Kind, reg.Kinds(), e.At))
		}
		return true
	})

	kinds := make([]string, 0, len(marks))
	for k := range marks {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		in := reg.intrinsics[kind]
		res.Contracts = append(res.Contracts, propagate(tree, in, marks[kind])...)
	}

	res.normalize()
	return res
}

// propagate cascades an intrinsic from each marked symbol to its
// descendants. The nearest marked ancestor supplies the declaration site.
func propagate(tree *symbols.Tree, in Intrinsic, marked map[symbols.SymbolID]source.Ref) []*contract.Contract {
	var out []*contract.Contract
	var stack []source.Ref // declaration site per depth of marked ancestors
	var walk func(id symbols.SymbolID)
	walk = func(id symbols.SymbolID) {
		sym := tree.Get(id)
		at, own := marked[id]
		if own {
			stack = append(stack, at)
		}
		if len(stack) > 0 {
			out = append(out, in.Propagate(tree, sym, stack[len(stack)-1]))
		}
		for _, child := range sym.Children {
			walk(child)
		}
		if own {
			stack = stack[:len(stack)-1]
		}
	}
	walk(tree.Root().ID)
	return out
}
