package imports

import (
	"context"
	"sync"

	"keystone/internal/source"
)

// Index memoises resolved imports and declarations for one engine. It is
// safe for concurrent use; results do not depend on call order.
type Index struct {
	specs    Provider
	decls    DeclProvider
	resolver *Resolver

	mu        sync.Mutex
	specMemo  map[string][]Spec
	declMemo  map[string][]Decl
	specCalls int
}

func NewIndex(p Provider, d DeclProvider, r *Resolver) *Index {
	return &Index{
		specs:    p,
		decls:    d,
		resolver: r,
		specMemo: make(map[string][]Spec),
		declMemo: make(map[string][]Decl),
	}
}

// Imports returns file's specifiers with Resolved filled in.
// Errors are not memoised.
func (x *Index) Imports(ctx context.Context, file string) ([]Spec, error) {
	x.mu.Lock()
	if specs, ok := x.specMemo[file]; ok {
		x.mu.Unlock()
		return specs, nil
	}
	x.mu.Unlock()

	specs, err := x.specs.Imports(ctx, file)
	if err != nil {
		return nil, err
	}
	for i := range specs {
		if specs[i].Resolved != "" {
			specs[i].Resolved = source.CleanPath(specs[i].Resolved)
			continue
		}
		if x.resolver != nil {
			if p, ok := x.resolver.Resolve(file, specs[i].Module); ok {
				specs[i].Resolved = p
			}
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.specCalls++
	if prev, ok := x.specMemo[file]; ok {
		return prev, nil
	}
	x.specMemo[file] = specs
	return specs, nil
}

func (x *Index) Declarations(ctx context.Context, file string) ([]Decl, error) {
	if x.decls == nil {
		return nil, nil
	}
	x.mu.Lock()
	if decls, ok := x.declMemo[file]; ok {
		x.mu.Unlock()
		return decls, nil
	}
	x.mu.Unlock()

	decls, err := x.decls.Declarations(ctx, file)
	if err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if prev, ok := x.declMemo[file]; ok {
		return prev, nil
	}
	x.declMemo[file] = decls
	return decls, nil
}

// Forget drops memoised data of a changed file.
func (x *Index) Forget(file string) {
	file = source.CleanPath(file)
	x.mu.Lock()
	delete(x.specMemo, file)
	delete(x.declMemo, file)
	x.mu.Unlock()
}

// Reset drops everything.
func (x *Index) Reset() {
	x.mu.Lock()
	clear(x.specMemo)
	clear(x.declMemo)
	x.mu.Unlock()
}

// Extractions reports how many provider extractions completed; tests use it
// to observe memoisation.
func (x *Index) Extractions() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.specCalls
}
