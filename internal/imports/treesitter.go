package imports

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"keystone/internal/fsys"
	"keystone/internal/trace"
)

// Facts is everything extracted from one file in a single parse.
type Facts struct {
	Imports []Spec
	Decls   []Decl
}

type language struct {
	name    string
	grammar func() *sitter.Language
	query   string
	extract func(q *sitter.Query, root *sitter.Node, src []byte) *Facts

	once     sync.Once
	compiled *sitter.Query
	err      error
}

func (l *language) compile() (*sitter.Query, error) {
	l.once.Do(func() {
		l.compiled, l.err = sitter.NewQuery([]byte(l.query), l.grammar())
		if l.err != nil {
			l.err = fmt.Errorf("compile %s query: %w", l.name, l.err)
		}
	})
	return l.compiled, l.err
}

var (
	langTypeScript = &language{name: "typescript", grammar: typescript.GetLanguage, query: tsQuery, extract: extractTS}
	langTSX        = &language{name: "tsx", grammar: tsx.GetLanguage, query: tsQuery, extract: extractTS}
	langGo         = &language{name: "go", grammar: golang.GetLanguage, query: goQuery, extract: extractGo}
)

func languageFor(file string) *language {
	switch path.Ext(file) {
	case ".ts", ".mts", ".cts", ".js", ".mjs", ".cjs":
		return langTypeScript
	case ".tsx", ".jsx":
		return langTSX
	case ".go":
		return langGo
	}
	return nil
}

// Supported reports whether file has a language the extractor understands.
func Supported(file string) bool {
	return languageFor(file) != nil
}

// TreeSitter extracts imports and declarations by parsing files with
// tree-sitter grammars. Files of unknown languages yield no facts.
type TreeSitter struct {
	fs    fsys.FS
	cache *DiskCache
}

// NewTreeSitter creates an extractor reading through f; cache may be nil.
func NewTreeSitter(f fsys.FS, cache *DiskCache) *TreeSitter {
	return &TreeSitter{fs: f, cache: cache}
}

func (p *TreeSitter) Imports(ctx context.Context, file string) ([]Spec, error) {
	facts, err := p.Facts(ctx, file)
	if err != nil {
		return nil, err
	}
	return facts.Imports, nil
}

func (p *TreeSitter) Declarations(ctx context.Context, file string) ([]Decl, error) {
	facts, err := p.Facts(ctx, file)
	if err != nil {
		return nil, err
	}
	return facts.Decls, nil
}

// Facts parses file (or loads it from the disk cache).
func (p *TreeSitter) Facts(ctx context.Context, file string) (*Facts, error) {
	lang := languageFor(file)
	if lang == nil {
		return &Facts{}, nil
	}
	src, err := p.fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	key := KeyFor(lang.name, src)
	if cached, ok, err := p.cache.Get(key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		trace.Point(ctx, trace.ScopeNode, "imports.cache", fmt.Sprintf("disk cache read %s: %v", file, err))
	}
	facts, err := Parse(ctx, file, src)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Put(key, facts); err != nil {
		trace.Point(ctx, trace.ScopeNode, "imports.cache", fmt.Sprintf("disk cache write %s: %v", file, err))
	}
	return facts, nil
}

// Parse extracts facts from src using the grammar selected by file's extension.
func Parse(ctx context.Context, file string, src []byte) (*Facts, error) {
	lang := languageFor(file)
	if lang == nil {
		return &Facts{}, nil
	}
	q, err := lang.compile()
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", file, err)
	}
	return lang.extract(q, tree.RootNode(), src), nil
}

// captures runs q over root and calls fn with each match's captures by name.
func captures(q *sitter.Query, root *sitter.Node, fn func(map[string]*sitter.Node)) {
	qc := sitter.NewQueryCursor()
	qc.Exec(q, root)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		byName := make(map[string]*sitter.Node, len(m.Captures))
		for _, c := range m.Captures {
			byName[q.CaptureNameForId(c.Index)] = c.Node
		}
		fn(byName)
	}
}

func position(n *sitter.Node) (line, col uint32) {
	p := n.StartPoint()
	return p.Row + 1, p.Column
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// typeName reduces a type expression to its bare name:
// ": ports.Repo<User>" -> "Repo", "*pkg.T" -> "T".
func typeName(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	if i := strings.IndexAny(s, "<["); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimLeft(s, "*&"))
}
