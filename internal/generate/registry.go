package generate

import (
	"fmt"
	"slices"

	"keystone/internal/contract"
	"keystone/internal/source"
	"keystone/internal/symbols"
)

// Site is the place a constraint entry is declared: the declaring symbol
// (member paths resolve relative to it), its tree, the kind name and the
// entry position.
type Site struct {
	Tree   *symbols.Tree
	Symbol *symbols.Symbol
	Kind   string
	At     source.Ref
}

// Generator turns one raw constraint value into contracts. Errors for one
// item must not stop the remaining items.
type Generator func(v Value, site Site) ([]*contract.Contract, []DefinitionError)

// Intrinsic is a unary marker carried by a symbol's declared shape. Instead
// of a generator it has a Propagate hook applied to the marked symbol and
// to every descendant.
type Intrinsic struct {
	Flag      symbols.Intrinsic
	Propagate func(tree *symbols.Tree, member *symbols.Symbol, at source.Ref) *contract.Contract
}

// Registry maps constraint-kind names to generators. It is an explicit
// value; build one per process with NewRegistry and pass it around.
type Registry struct {
	generators map[string]Generator
	intrinsics map[string]Intrinsic
}

// EmptyRegistry returns a registry with no kinds.
func EmptyRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
		intrinsics: make(map[string]Intrinsic),
	}
}

// NewRegistry returns a registry with every built-in kind.
func NewRegistry() *Registry {
	r := EmptyRegistry()
	r.mustRegister(KindNoDependency, pairGenerator(contract.NoDependency))
	r.mustRegister(KindMustImplement, pairGenerator(contract.MustImplement))
	r.mustRegister(KindNoCycles, noCycles)
	r.mustRegister(KindExists, exists)
	r.mustRegister(KindMirrors, mirrors)
	if err := r.RegisterIntrinsic(KindPure, Intrinsic{Flag: symbols.IntrinsicPure, Propagate: propagatePure}); err != nil {
		panic(err)
	}
	return r
}

// Built-in constraint kinds.
const (
	KindNoDependency  = "noDependency"
	KindMustImplement = "mustImplement"
	KindNoCycles      = "noCycles"
	KindExists        = "filesystem.exists"
	KindMirrors       = "filesystem.mirrors"
	KindPure          = "pure"
)

func (r *Registry) mustRegister(kind string, g Generator) {
	if err := r.Register(kind, g); err != nil {
		panic(err)
	}
}

// Register adds a generator. Kinds are unique across generators and intrinsics.
func (r *Registry) Register(kind string, g Generator) error {
	if kind == "" || g == nil {
		return fmt.Errorf("generate: invalid registration for %q", kind)
	}
	if r.known(kind) {
		return fmt.Errorf("generate: kind %q already registered", kind)
	}
	r.generators[kind] = g
	return nil
}

func (r *Registry) RegisterIntrinsic(kind string, in Intrinsic) error {
	if kind == "" || in.Propagate == nil || in.Flag == 0 {
		return fmt.Errorf("generate: invalid intrinsic %q", kind)
	}
	if r.known(kind) {
		return fmt.Errorf("generate: kind %q already registered", kind)
	}
	r.intrinsics[kind] = in
	return nil
}

func (r *Registry) known(kind string) bool {
	_, g := r.generators[kind]
	_, i := r.intrinsics[kind]
	return g || i
}

// Kinds lists registered kind names, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.generators)+len(r.intrinsics))
	for k := range r.generators {
		out = append(out, k)
	}
	for k := range r.intrinsics {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IntrinsicFor returns the intrinsic registered under kind.
func (r *Registry) IntrinsicFor(kind string) (Intrinsic, bool) {
	in, ok := r.intrinsics[kind]
	return in, ok
}
