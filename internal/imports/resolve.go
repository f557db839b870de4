package imports

import (
	"path"
	"slices"
	"strings"

	"keystone/internal/fsys"
	"keystone/internal/source"
)

// Alias maps a specifier prefix onto a project directory ("@/" -> "src/").
type Alias struct {
	Prefix string
	Target string
}

// Resolver maps import specifiers to project-relative paths.
type Resolver struct {
	fs         fsys.FS
	extensions []string
	aliases    []Alias
	module     string
}

// NewResolver builds a resolver. Aliases are tried longest prefix first;
// a trailing "*" on prefix and target is ignored (tsconfig "paths" style).
// module is the Go module path used to resolve in-module package imports.
func NewResolver(f fsys.FS, extensions []string, aliases map[string]string, module string) *Resolver {
	r := &Resolver{fs: f, extensions: extensions, module: strings.TrimSuffix(module, "/")}
	for prefix, target := range aliases {
		r.aliases = append(r.aliases, Alias{
			Prefix: strings.TrimSuffix(prefix, "*"),
			Target: strings.TrimSuffix(target, "*"),
		})
	}
	slices.SortFunc(r.aliases, func(a, b Alias) int {
		if len(a.Prefix) != len(b.Prefix) {
			return len(b.Prefix) - len(a.Prefix)
		}
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return r
}

// Resolve returns the project path spec refers to from importer, or false
// for external packages and built-ins.
func (r *Resolver) Resolve(importer, spec string) (string, bool) {
	if spec == "" {
		return "", false
	}
	if strings.HasSuffix(importer, ".go") {
		return r.resolveGo(spec)
	}
	switch {
	case spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../"):
		return r.probe(path.Join(path.Dir(importer), spec)), true
	case strings.HasPrefix(spec, "/"):
		return r.probe(spec), true
	}
	for _, a := range r.aliases {
		if rest, ok := strings.CutPrefix(spec, a.Prefix); ok {
			return r.probe(path.Join(a.Target, rest)), true
		}
	}
	return "", false
}

func (r *Resolver) resolveGo(spec string) (string, bool) {
	if r.module == "" {
		return "", false
	}
	if spec == r.module {
		return "", true
	}
	rest, ok := strings.CutPrefix(spec, r.module+"/")
	if !ok {
		return "", false
	}
	return source.CleanPath(rest), true
}

// probe applies extension and index-file resolution. When nothing exists
// the cleaned path is returned unchanged: a dangling import still names the
// region it points into.
func (r *Resolver) probe(p string) string {
	p = source.CleanPath(p)
	if r.fs == nil {
		return p
	}
	if fsys.HasExtension(p, r.extensions) && r.fs.Exists(p) {
		return p
	}
	stem := p
	switch path.Ext(p) {
	case ".js", ".mjs", ".cjs", ".jsx":
		// ESM-style "./x.js" pointing at x.ts
		stem = strings.TrimSuffix(p, path.Ext(p))
	}
	for _, ext := range r.extensions {
		if c := stem + ext; r.fs.Exists(c) {
			return c
		}
	}
	for _, ext := range r.extensions {
		if c := path.Join(p, "index"+ext); r.fs.Exists(c) {
			return c
		}
	}
	return p
}
