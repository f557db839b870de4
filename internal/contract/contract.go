// Package contract defines the concrete obligations derived from an
// architecture declaration. A Contract is immutable once generated; checkers
// read it, diagnostics point back at it.
package contract

import (
	"fmt"
	"strings"

	"keystone/internal/source"
	"keystone/internal/symbols"
)

// Type is the closed set of contract kinds.
type Type uint8

const (
	NoDependency Type = iota + 1
	MustImplement
	NoCycles
	Purity
	Exists
	Mirrors
)

// AllTypes lists every contract type in declaration order.
func AllTypes() []Type {
	return []Type{NoDependency, MustImplement, NoCycles, Purity, Exists, Mirrors}
}

func (t Type) String() string {
	switch t {
	case NoDependency:
		return "noDependency"
	case MustImplement:
		return "mustImplement"
	case NoCycles:
		return "noCycles"
	case Purity:
		return "purity"
	case Exists:
		return "exists"
	case Mirrors:
		return "mirrors"
	}
	return "unknown"
}

// Arity returns the expected argument count; -1 means "two or more".
func (t Type) Arity() int {
	switch t {
	case Purity, Exists:
		return 1
	case NoDependency, MustImplement, Mirrors:
		return 2
	case NoCycles:
		return -1
	}
	panic(fmt.Sprintf("contract: unhandled type %d", t))
}

// Arg is one symbol involved in a contract, copied out of the tree so the
// contract stays valid after the tree is discarded.
type Arg struct {
	ID       symbols.SymbolID
	Path     string // dotted path relative to the tree root
	Location source.Location
}

// Options carries per-type flags.
type Options struct {
	Bidirectional bool // mirrors

	// Nested lists regions inside the argument that are checked by a
	// contract of their own (purity cascade). Not part of the ID.
	Nested []source.Location
}

// Contract is one checkable obligation.
type Contract struct {
	ID          string
	Type        Type
	Description string
	Args        []Arg
	Decl        source.Ref
	Options     Options
}

// New builds a contract for args declared at decl within the named tree.
func New(tree string, typ Type, args []Arg, decl source.Ref, opts Options) *Contract {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Path
		if names[i] == "" {
			names[i] = tree
		}
	}
	c := &Contract{
		Type:    typ,
		Args:    args,
		Decl:    decl,
		Options: opts,
	}
	c.Description = describe(typ, names, opts)
	c.ID = fmt.Sprintf("%s/%s(%s)", tree, typ, strings.Join(names, ","))
	if opts.Bidirectional {
		c.ID += "<->"
	}
	return c
}

// Touches reports whether file lies under any argument location.
func (c *Contract) Touches(file string) bool {
	for _, a := range c.Args {
		if a.Location.Matches(file) {
			return true
		}
	}
	return false
}

// Nested reports whether file belongs to a region listed in Options.Nested.
func (c *Contract) Nested(file string) bool {
	for _, loc := range c.Options.Nested {
		if loc.Matches(file) {
			return true
		}
	}
	return false
}

func (c *Contract) String() string {
	return c.ID
}

func describe(typ Type, names []string, opts Options) string {
	switch typ {
	case NoDependency:
		return fmt.Sprintf("%s must not depend on %s", names[0], names[1])
	case MustImplement:
		return fmt.Sprintf("every port in %s must be implemented in %s", names[0], names[1])
	case NoCycles:
		return fmt.Sprintf("no dependency cycles between %s", strings.Join(names, ", "))
	case Purity:
		return fmt.Sprintf("%s must be pure", names[0])
	case Exists:
		return fmt.Sprintf("%s must exist", names[0])
	case Mirrors:
		if opts.Bidirectional {
			return fmt.Sprintf("%s and %s must mirror each other", names[0], names[1])
		}
		return fmt.Sprintf("%s must be mirrored by %s", names[0], names[1])
	}
	panic(fmt.Sprintf("contract: unhandled type %d", typ))
}
