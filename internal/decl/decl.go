// Package decl loads architecture definitions from YAML.
//
// A definition file declares reusable kinds and one or more architectures:
//
//	kinds:
//	  Domain:
//	    pure: true
//	architectures:
//	  app:
//	    location: src
//	    members:
//	      domain:
//	        kind: Domain
//	        members:
//	          ports: ports
//	      infrastructure: infra
//	    constraints:
//	      noDependency:
//	        - [domain, infrastructure]
//
// A member written as a scalar is a location; a mapping may carry
// location, kind, members, constraints and intrinsic flags (pure).
// Member locations are relative to the parent's; a leading "/" makes them
// relative to the project root. An omitted location defaults to the member name.
package decl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"keystone/internal/diag"
	"keystone/internal/generate"
	"keystone/internal/source"
	"keystone/internal/symbols"
)

// ErrNoArchitectures is returned when a definition declares nothing to check.
var ErrNoArchitectures = errors.New("definition declares no architectures")

// Architecture is one resolved symbol tree and its constraint entries.
type Architecture struct {
	Tree   *symbols.Tree
	Config generate.Config
}

// Definition is a parsed definition file. Errors holds structural problems
// found while loading; they are reported next to generation errors.
type Definition struct {
	File          string
	Architectures []Architecture
	Errors        []generate.DefinitionError
}

// Generate runs every architecture through reg and merges the results.
func (d *Definition) Generate(reg *generate.Registry) generate.Result {
	var res generate.Result
	res.Merge(generate.Result{Errors: d.Errors})
	for _, a := range d.Architectures {
		res.Merge(generate.Contracts(reg, a.Tree, a.Config))
	}
	return res
}

// LoadFile reads root/rel. Positions in the result use rel as file name.
func LoadFile(reg *generate.Registry, root, rel string) (*Definition, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(reg, rel, data)
}

// Parse decodes a definition. Syntax errors and an empty definition are
// returned as errors; everything else lands in Definition.Errors.
func Parse(reg *generate.Registry, file string, data []byte) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	l := &loader{
		reg:   reg,
		file:  source.CleanPath(file),
		kinds: make(map[string]*kindDecl),
	}
	def := &Definition{File: l.file}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrNoArchitectures)
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: expected a mapping at top level", file, top.Line)
	}

	var archs *yaml.Node
	for i := 0; i+1 < len(top.Content); i += 2 {
		k, v := top.Content[i], top.Content[i+1]
		switch k.Value {
		case "kinds":
			l.loadKinds(v)
		case "architectures":
			archs = v
		default:
			l.errorf(diag.DefMalformedValue, k, "unknown top-level key %q", k.Value)
		}
	}
	if archs == nil || len(archs.Content) == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrNoArchitectures)
	}
	if archs.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: architectures must be a mapping", file, archs.Line)
	}
	for i := 0; i+1 < len(archs.Content); i += 2 {
		def.Architectures = append(def.Architectures, l.architecture(archs.Content[i], archs.Content[i+1]))
	}
	slices.SortStableFunc(l.errs, func(a, b generate.DefinitionError) int {
		return a.At.Compare(b.At)
	})
	def.Errors = l.errs
	return def, nil
}
