package check

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"keystone/internal/contract"
	"keystone/internal/fsys"
	"keystone/internal/imports"
	"keystone/internal/source"
)

var tsExtensions = []string{".ts", ".tsx"}

func memFS(files map[string]string) fstest.MapFS {
	mem := fstest.MapFS{}
	for p, content := range files {
		mem[p] = &fstest.MapFile{Data: []byte(content)}
	}
	return mem
}

// newEnv wires the real tree-sitter provider over an in-memory project.
func newEnv(t *testing.T, lang, module string, files map[string]string) *Env {
	t.Helper()
	f, err := fsys.New(memFS(files))
	require.NoError(t, err)
	exts := tsExtensions
	if lang == "go" {
		exts = []string{".go"}
	}
	ts := imports.NewTreeSitter(f, nil)
	idx := imports.NewIndex(ts, ts, imports.NewResolver(f, exts, nil, module))
	deny, err := LoadDenylist(lang, nil, nil)
	require.NoError(t, err)
	return &Env{FS: f, Imports: idx, Decls: idx, Denylist: deny, Extensions: exts}
}

func arg(path, loc string) contract.Arg {
	return contract.Arg{Path: path, Location: source.NewLocation(loc)}
}

var declAt = source.At("architecture.yaml", 10, 4)

func mk(typ contract.Type, opts contract.Options, args ...contract.Arg) *contract.Contract {
	return contract.New("app", typ, args, declAt, opts)
}

func run(t *testing.T, env *Env, c *contract.Contract) Outcome {
	t.Helper()
	out, err := Check(context.Background(), env, c)
	require.NoError(t, err)
	return out
}
