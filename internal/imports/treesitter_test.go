package imports

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keystone/internal/fsys"
)

const tsSample = `import { db } from '../infrastructure/database';
import type { User } from "./user";
export * from './shared';
const fs = require('fs');

export interface UserRepo {
  find(id: string): User;
}
export class PgUserRepo implements UserRepo, Other<T> {}
export const repo: UserRepo = new PgUserRepo();
`

func TestParseTypeScript(t *testing.T) {
	facts, err := Parse(context.Background(), "src/domain/service.ts", []byte(tsSample))
	require.NoError(t, err)

	require.Len(t, facts.Imports, 4)
	assert.Equal(t, Spec{Module: "../infrastructure/database", Line: 1, Col: 0}, facts.Imports[0])
	assert.Equal(t, "./user", facts.Imports[1].Module)
	assert.Equal(t, Spec{Module: "./shared", Line: 3, Col: 0}, facts.Imports[2])
	assert.Equal(t, Spec{Module: "fs", Line: 4, Col: 11}, facts.Imports[3])

	byName := map[string]Decl{}
	for _, d := range facts.Decls {
		byName[d.Name] = d
	}
	iface := byName["UserRepo"]
	assert.Equal(t, DeclInterface, iface.Kind)
	assert.True(t, iface.Exported)
	assert.Equal(t, uint32(6), iface.Line)
	assert.Equal(t, []string{"find"}, iface.Methods)

	class := byName["PgUserRepo"]
	assert.Equal(t, DeclClass, class.Kind)
	assert.Equal(t, []string{"UserRepo", "Other"}, class.Implements)

	value := byName["repo"]
	assert.Equal(t, DeclValue, value.Kind)
	assert.Equal(t, "UserRepo", value.TypeName)
}

const goSample = `package adapters

import (
	"fmt"
	"example.com/app/internal/ports"
)

type userRepo struct{}

var _ ports.UserRepo = (*userRepo)(nil)

func (r *userRepo) Find(id string) error { return fmt.Errorf("x") }

type Store interface {
	Find(id string) error
	Save() error
}
`

func TestParseGo(t *testing.T) {
	facts, err := Parse(context.Background(), "internal/adapters/repo.go", []byte(goSample))
	require.NoError(t, err)

	require.Len(t, facts.Imports, 2)
	assert.Equal(t, Spec{Module: "fmt", Line: 4, Col: 1}, facts.Imports[0])
	assert.Equal(t, Spec{Module: "example.com/app/internal/ports", Line: 5, Col: 1}, facts.Imports[1])

	var kinds []DeclKind
	var store, method, value Decl
	for _, d := range facts.Decls {
		kinds = append(kinds, d.Kind)
		switch d.Name {
		case "Store":
			store = d
		case "Find":
			method = d
		case "_":
			value = d
		}
	}
	assert.Equal(t, []DeclKind{DeclClass, DeclValue, DeclMethod, DeclInterface}, kinds)
	assert.Equal(t, []string{"Find", "Save"}, store.Methods)
	assert.True(t, store.Exported)
	assert.Equal(t, "userRepo", method.TypeName)
	assert.Equal(t, "UserRepo", value.TypeName)
}

func TestParseUnknownLanguage(t *testing.T) {
	facts, err := Parse(context.Background(), "README.md", []byte("# hi"))
	require.NoError(t, err)
	assert.Empty(t, facts.Imports)
	assert.False(t, Supported("README.md"))
	assert.True(t, Supported("a.tsx"))
}

func TestTreeSitterUsesDiskCache(t *testing.T) {
	mem := fstest.MapFS{"src/a.ts": {Data: []byte("import x from './b';\n")}}
	f, err := fsys.New(mem)
	require.NoError(t, err)
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)

	p := NewTreeSitter(f, cache)
	first, err := p.Imports(context.Background(), "src/a.ts")
	require.NoError(t, err)
	require.Len(t, first, 1)

	cached, ok, err := cache.Get(KeyFor("typescript", mem["src/a.ts"].Data))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, cached.Imports)

	second, err := p.Imports(context.Background(), "src/a.ts")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, cache.DropAll())
	_, ok, err = cache.Get(KeyFor("typescript", mem["src/a.ts"].Data))
	require.NoError(t, err)
	assert.False(t, ok)
}
