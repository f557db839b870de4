package generate

import (
	"errors"
	"slices"
	"strings"

	"keystone/internal/contract"
	"keystone/internal/source"
	"keystone/internal/symbols"
)

func argOf(s *symbols.Symbol) contract.Arg {
	return contract.Arg{ID: s.ID, Path: s.Path, Location: s.Location}
}

// member resolves a string value relative to the declaring symbol.
func member(site Site, v Value) (*symbols.Symbol, *DefinitionError) {
	if v.Kind != ValueString {
		err := malformed(site.Kind, v.At, "expected a member name, got %s", v.Kind)
		return nil, &err
	}
	sym, err := site.Tree.FindByPath(site.Symbol.ID, v.Str)
	if err != nil {
		if errors.Is(err, symbols.ErrNotFound) {
			e := unresolved(site.Kind, v.Str, site.Tree.DisplayPath(site.Symbol.ID), v.At)
			return nil, &e
		}
		e := malformed(site.Kind, v.At, "%v", err)
		return nil, &e
	}
	return sym, nil
}

// pairs accepts [a, b] or [[a, b], [c, d], ...].
func pairs(v Value, site Site) ([][2]Value, []DefinitionError) {
	if v.Kind != ValueList || len(v.List) == 0 {
		return nil, []DefinitionError{malformed(site.Kind, v.At, "expected a list of [from, to] pairs, got %s", v.Kind)}
	}
	if v.isStringList() {
		if len(v.List) != 2 {
			return nil, []DefinitionError{malformed(site.Kind, v.At, "a pair needs exactly 2 members, got %d", len(v.List))}
		}
		return [][2]Value{{v.List[0], v.List[1]}}, nil
	}
	var out [][2]Value
	var errs []DefinitionError
	for _, item := range v.List {
		if item.Kind != ValueList || len(item.List) != 2 {
			errs = append(errs, malformed(site.Kind, item.At, "expected a [from, to] pair"))
			continue
		}
		out = append(out, [2]Value{item.List[0], item.List[1]})
	}
	return out, errs
}

// pairGenerator serves noDependency and mustImplement.
func pairGenerator(typ contract.Type) Generator {
	return func(v Value, site Site) ([]*contract.Contract, []DefinitionError) {
		ps, errs := pairs(v, site)
		var out []*contract.Contract
		for _, p := range ps {
			from, ferr := member(site, p[0])
			to, terr := member(site, p[1])
			if ferr != nil || terr != nil {
				for _, e := range []*DefinitionError{ferr, terr} {
					if e != nil {
						errs = append(errs, *e)
					}
				}
				continue
			}
			if from.ID == to.ID {
				errs = append(errs, malformed(site.Kind, p[0].At, "%q is paired with itself", p[0].Str))
				continue
			}
			out = append(out, contract.New(site.Tree.Name(), typ, []contract.Arg{argOf(from), argOf(to)}, p[0].At, contract.Options{}))
		}
		return out, errs
	}
}

// noCycles accepts [a, b, ...] or [[a, b], [c, d, e]].
func noCycles(v Value, site Site) ([]*contract.Contract, []DefinitionError) {
	var groups []Value
	switch {
	case v.isStringList():
		groups = []Value{v}
	case v.Kind == ValueList && len(v.List) > 0:
		groups = v.List
	default:
		return nil, []DefinitionError{malformed(site.Kind, v.At, "expected a list of members, got %s", v.Kind)}
	}
	var out []*contract.Contract
	var errs []DefinitionError
	for _, g := range groups {
		if !g.isStringList() {
			errs = append(errs, malformed(site.Kind, g.At, "expected a list of member names"))
			continue
		}
		var args []contract.Arg
		failed := false
		for _, item := range g.List {
			sym, err := member(site, item)
			if err != nil {
				errs = append(errs, *err)
				failed = true
				continue
			}
			args = append(args, argOf(sym))
		}
		if failed {
			continue
		}
		// canonical order: the ID and the DFS order do not depend on how the group was written
		slices.SortFunc(args, func(a, b contract.Arg) int { return strings.Compare(a.Path, b.Path) })
		args = slices.CompactFunc(args, func(a, b contract.Arg) bool { return a.ID == b.ID })
		if len(args) < 2 {
			errs = append(errs, malformed(site.Kind, g.At, "a cycle check needs at least 2 distinct members"))
			continue
		}
		out = append(out, contract.New(site.Tree.Name(), contract.NoCycles, args, g.At, contract.Options{}))
	}
	return out, errs
}

// exists accepts a member name or a list of member names; "" names the
// declaring symbol.
func exists(v Value, site Site) ([]*contract.Contract, []DefinitionError) {
	items := []Value{v}
	if v.Kind == ValueList {
		items = v.List
	}
	if len(items) == 0 {
		return nil, []DefinitionError{malformed(site.Kind, v.At, "expected at least one member")}
	}
	var out []*contract.Contract
	var errs []DefinitionError
	for _, item := range items {
		sym, err := member(site, item)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		out = append(out, contract.New(site.Tree.Name(), contract.Exists, []contract.Arg{argOf(sym)}, item.At, contract.Options{}))
	}
	return out, errs
}

// mirrors accepts pairs like noDependency, or mappings
// {from: a, to: b, bidirectional: true} (alone or in a list).
func mirrors(v Value, site Site) ([]*contract.Contract, []DefinitionError) {
	items := []Value{v}
	if v.Kind == ValueList && len(v.List) > 0 && v.List[0].Kind == ValueMap {
		items = v.List
	}
	var out []*contract.Contract
	var errs []DefinitionError
	for _, item := range items {
		if item.Kind != ValueMap {
			ps, perrs := pairs(item, site)
			errs = append(errs, perrs...)
			for _, p := range ps {
				if c, err := mirrorContract(site, p[0], p[1], false, p[0].At); err != nil {
					errs = append(errs, *err)
				} else {
					out = append(out, c)
				}
			}
			continue
		}
		from, fok := item.Get("from")
		to, tok := item.Get("to")
		if !fok || !tok {
			errs = append(errs, malformed(site.Kind, item.At, "mapping needs both from and to"))
			continue
		}
		bidi := false
		if b, ok := item.Get("bidirectional"); ok {
			if b.Kind != ValueBool {
				errs = append(errs, malformed(site.Kind, b.At, "bidirectional must be a boolean"))
				continue
			}
			bidi = b.Bool
		}
		if c, err := mirrorContract(site, from, to, bidi, item.At); err != nil {
			errs = append(errs, *err)
		} else {
			out = append(out, c)
		}
	}
	return out, errs
}

func mirrorContract(site Site, fromV, toV Value, bidi bool, at source.Ref) (*contract.Contract, *DefinitionError) {
	from, err := member(site, fromV)
	if err != nil {
		return nil, err
	}
	to, err := member(site, toV)
	if err != nil {
		return nil, err
	}
	if from.Location.Pattern || to.Location.Pattern {
		e := malformed(site.Kind, at, "mirrored members need plain directory locations")
		return nil, &e
	}
	if from.ID == to.ID {
		e := malformed(site.Kind, at, "%q is mirrored onto itself", fromV.Str)
		return nil, &e
	}
	return contract.New(site.Tree.Name(), contract.Mirrors, []contract.Arg{argOf(from), argOf(to)}, at, contract.Options{Bidirectional: bidi}), nil
}

// propagatePure builds the purity contract of one member. Every child of a
// pure member is pure too and owns its files, so the member's contract
// leaves them out and each import is reported once.
func propagatePure(tree *symbols.Tree, member *symbols.Symbol, at source.Ref) *contract.Contract {
	var opts contract.Options
	for _, child := range member.Children {
		opts.Nested = append(opts.Nested, tree.Get(child).Location)
	}
	return contract.New(tree.Name(), contract.Purity, []contract.Arg{argOf(member)}, at, opts)
}
