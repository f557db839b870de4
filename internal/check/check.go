// Package check evaluates contracts against the project's files, imports
// and declarations. Every checker accumulates into a private diagnostic list;
// nothing is shared between concurrent checks except the read-only Env.
package check

import (
	"context"
	"fmt"
	"slices"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/fsys"
	"keystone/internal/imports"
	"keystone/internal/source"
)

// Env holds the collaborators a check reads from.
type Env struct {
	FS         fsys.FS
	Imports    imports.Provider
	Decls      imports.DeclProvider
	Denylist   *Denylist
	Extensions []string // source files; empty means every file
}

// Skipped is a file that could not be read or parsed.
type Skipped struct {
	File string
	Err  error
}

// Outcome of checking one contract.
type Outcome struct {
	Diagnostics []diag.Diagnostic
	Touched     []string // files read, sorted
	Skipped     []Skipped
}

// Check evaluates c. The only error is ctx cancellation; per-file failures
// end up in Outcome.Skipped.
func Check(ctx context.Context, env *Env, c *contract.Contract) (Outcome, error) {
	p := &pass{
		ctx:     ctx,
		env:     env,
		c:       c,
		bag:     diag.NewBag(0),
		touched: make(map[string]struct{}),
	}
	p.rep = diag.NewDedupReporter(diag.BagReporter{Bag: p.bag})

	var err error
	switch c.Type {
	case contract.NoDependency:
		err = checkNoDependency(p)
	case contract.MustImplement:
		err = checkMustImplement(p)
	case contract.NoCycles:
		err = checkNoCycles(p)
	case contract.Purity:
		err = checkPurity(p)
	case contract.Exists:
		err = checkExists(p)
	case contract.Mirrors:
		err = checkMirrors(p)
	default:
		panic(fmt.Sprintf("check: unhandled contract type %d", c.Type))
	}
	if err != nil {
		return Outcome{}, err
	}
	return p.outcome(), nil
}

type pass struct {
	ctx     context.Context
	env     *Env
	c       *contract.Contract
	bag     *diag.Bag
	rep     diag.Reporter
	touched map[string]struct{}
	skipped []Skipped
}

func (p *pass) outcome() Outcome {
	p.bag.Sort()
	out := Outcome{
		Diagnostics: p.bag.Items(),
		Skipped:     p.skipped,
	}
	for f := range p.touched {
		out.Touched = append(out.Touched, f)
	}
	slices.Sort(out.Touched)
	return out
}

func (p *pass) skip(file string, err error) {
	p.skipped = append(p.skipped, Skipped{File: file, Err: err})
}

// files lists every file under loc.
func (p *pass) files(loc source.Location) []string {
	if p.env.FS == nil {
		return nil
	}
	files, err := fsys.Files(p.env.FS, loc)
	if err != nil {
		p.skip(loc.Base(), err)
		return nil
	}
	return files
}

// sources lists the source files under loc.
func (p *pass) sources(loc source.Location) []string {
	files := p.files(loc)
	if len(p.env.Extensions) == 0 {
		return files
	}
	out := files[:0]
	for _, f := range files {
		if fsys.HasExtension(f, p.env.Extensions) {
			out = append(out, f)
		}
	}
	return out
}

// imports returns file's specifiers; ok is false when the file was skipped.
func (p *pass) imports(file string) ([]imports.Spec, bool, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, false, err
	}
	p.touched[file] = struct{}{}
	if p.env.Imports == nil {
		return nil, true, nil
	}
	specs, err := p.env.Imports.Imports(p.ctx, file)
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		p.skip(file, err)
		return nil, false, nil
	}
	return specs, true, nil
}

func (p *pass) declarations(file string) ([]imports.Decl, bool, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, false, err
	}
	p.touched[file] = struct{}{}
	if p.env.Decls == nil {
		return nil, true, nil
	}
	decls, err := p.env.Decls.Declarations(p.ctx, file)
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		p.skip(file, err)
		return nil, false, nil
	}
	return decls, true, nil
}

func (p *pass) name(i int) string {
	if a := p.c.Args[i]; a.Path != "" {
		return a.Path
	}
	return "root"
}
