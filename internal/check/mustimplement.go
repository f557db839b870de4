package check

import (
	"fmt"
	"path"

	"keystone/internal/diag"
	"keystone/internal/imports"
)

type port struct {
	file string
	decl imports.Decl
}

// implementations collects what the adapters side provides.
type implementations struct {
	named   map[string]struct{}            // explicit: implements X, const a: X, var _ X
	methods map[string]map[string]struct{} // "dir\x00Type" -> method names
	types   []string                       // keys of methods for declared structs/classes
}

func (im *implementations) satisfies(p imports.Decl) bool {
	if _, ok := im.named[p.Name]; ok {
		return true
	}
	// structural match only for interfaces that list methods (Go method sets)
	if len(p.Methods) == 0 {
		return false
	}
	for _, key := range im.types {
		set := im.methods[key]
		all := true
		for _, m := range p.Methods {
			if _, ok := set[m]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func checkMustImplement(p *pass) error {
	ports, adapters := p.c.Args[0], p.c.Args[1]

	var wanted []port
	for _, file := range p.sources(ports.Location) {
		decls, ok, err := p.declarations(file)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, d := range decls {
			if d.Kind == imports.DeclInterface && d.Exported {
				wanted = append(wanted, port{file: file, decl: d})
			}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	im := &implementations{
		named:   make(map[string]struct{}),
		methods: make(map[string]map[string]struct{}),
	}
	for _, file := range p.sources(adapters.Location) {
		decls, ok, err := p.declarations(file)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		dir := path.Dir(file)
		for _, d := range decls {
			switch d.Kind {
			case imports.DeclClass:
				for _, name := range d.Implements {
					im.named[name] = struct{}{}
				}
				key := dir + "\x00" + d.Name
				if _, ok := im.methods[key]; !ok {
					im.methods[key] = make(map[string]struct{})
				}
				im.types = append(im.types, key)
			case imports.DeclValue:
				if d.TypeName != "" {
					im.named[d.TypeName] = struct{}{}
				}
			case imports.DeclMethod:
				key := dir + "\x00" + d.TypeName
				if im.methods[key] == nil {
					im.methods[key] = make(map[string]struct{})
				}
				im.methods[key][d.Name] = struct{}{}
			}
		}
	}

	for _, w := range wanted {
		if im.satisfies(w.decl) {
			continue
		}
		msg := fmt.Sprintf("interface %s has no implementation in %s", w.decl.Name, p.name(1))
		diag.ReportViolation(p.rep, p.c, w.decl.Ref(w.file), msg).
			WithFix("implement-interface", fmt.Sprintf("add an implementation of %s under %s", w.decl.Name, adapters.Location)).
			Emit()
	}
	return nil
}
