package imports

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keystone/internal/fsys"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	f, err := fsys.New(fstest.MapFS{
		"src/domain/service.ts":            {},
		"src/infrastructure/database.ts":   {},
		"src/infrastructure/http/index.ts": {},
		"src/shared/util.tsx":              {},
	})
	require.NoError(t, err)
	return NewResolver(f, []string{".ts", ".tsx"}, map[string]string{"@/*": "src/*", "@shared/": "src/shared/"}, "example.com/app")
}

func TestResolveRelativeAndProbing(t *testing.T) {
	r := testResolver(t)
	cases := map[string]string{
		"../infrastructure/database":    "src/infrastructure/database.ts",
		"../infrastructure/database.js": "src/infrastructure/database.ts",
		"../infrastructure/http":        "src/infrastructure/http/index.ts",
		"../infrastructure/missing":     "src/infrastructure/missing",
		"@/shared/util":                 "src/shared/util.tsx",
		"@shared/util":                  "src/shared/util.tsx",
	}
	for spec, want := range cases {
		got, ok := r.Resolve("src/domain/service.ts", spec)
		require.True(t, ok, spec)
		assert.Equal(t, want, got, spec)
	}
	_, ok := r.Resolve("src/domain/service.ts", "fs")
	assert.False(t, ok)
	_, ok = r.Resolve("src/domain/service.ts", "node:fs")
	assert.False(t, ok)
}

func TestResolveGoModule(t *testing.T) {
	r := testResolver(t)
	got, ok := r.Resolve("internal/domain/a.go", "example.com/app/internal/infra")
	require.True(t, ok)
	assert.Equal(t, "internal/infra", got)
	_, ok = r.Resolve("internal/domain/a.go", "example.com/other/x")
	assert.False(t, ok)
	_, ok = r.Resolve("internal/domain/a.go", "os")
	assert.False(t, ok)
}

func TestIndexResolvesAndMemoises(t *testing.T) {
	static := Static{Specs: map[string][]Spec{
		"src/domain/service.ts": {{Module: "../infrastructure/database", Line: 1}},
	}}
	idx := NewIndex(static, static, testResolver(t))
	ctx := context.Background()

	specs, err := idx.Imports(ctx, "src/domain/service.ts")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "src/infrastructure/database.ts", specs[0].Resolved)

	_, err = idx.Imports(ctx, "src/domain/service.ts")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Extractions())

	idx.Forget("./src/domain/service.ts")
	_, err = idx.Imports(ctx, "src/domain/service.ts")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Extractions())
}
