package check

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/imports"
	"keystone/internal/source"
)

func TestNoDependencyReportsResolvedImports(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/domain/user.ts": "import { db } from '../infrastructure/db';\n" +
			"import { Entity } from './entity';\n" +
			"import { x } from 'infrastructure/db';\n",
		"src/domain/entity.ts":         "export class Entity {}\n",
		"src/domain/deep/order.ts":     "import { db } from '../../infrastructure/db.js';\n",
		"src/infrastructure/db.ts":     "export const db = 1;\n",
		"src/infrastructure/index.ts":  "import { db } from './db';\n",
		"src/infrastructure/README.md": "not a source file\n",
	})
	c := mk(contract.NoDependency, contract.Options{}, arg("domain", "src/domain"), arg("infrastructure", "src/infrastructure"))

	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 2)
	first := out.Diagnostics[0]
	assert.Equal(t, diag.NoDependencyViolation, first.Code)
	assert.Equal(t, source.At("src/domain/deep/order.ts", 1, 0), first.Primary)
	assert.Equal(t, c, first.Contract)
	assert.Equal(t, source.At("src/domain/user.ts", 1, 0), out.Diagnostics[1].Primary)
	require.Len(t, first.Fixes, 1)
	assert.Equal(t, "remove-import", first.Fixes[0].Name)
	assert.Contains(t, out.Touched, "src/domain/user.ts")
}

func TestNoDependencyNestedRegions(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/main.ts":       "import { a } from './infra/a';\n",
		"src/infra/a.ts":    "import { b } from './b';\n",
		"src/infra/b.ts":    "export const b = 1;\n",
		"src/app/server.ts": "export const s = 1;\n",
	})
	c := mk(contract.NoDependency, contract.Options{}, arg("", "src"), arg("infra", "src/infra"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "src/main.ts", out.Diagnostics[0].Primary.File)
}

func TestNoDependencyGoModuleImports(t *testing.T) {
	env := newEnv(t, "go", "example.com/shop", map[string]string{
		"internal/domain/order.go": "package domain\n\nimport (\n\t\"fmt\"\n\t\"example.com/shop/internal/infra\"\n)\n",
		"internal/infra/db.go":     "package infra\n",
	})
	c := mk(contract.NoDependency, contract.Options{}, arg("domain", "internal/domain"), arg("infra", "internal/infra"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, source.At("internal/domain/order.go", 5, 1), out.Diagnostics[0].Primary)
}

func TestPurityDenylist(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/domain/a.ts": "import { readFile } from 'node:fs/promises';\n" +
			"import { z } from 'zod';\n" +
			"import { path } from './path';\n",
		"src/domain/path.ts": "export const path = 1;\n",
	})
	c := mk(contract.Purity, contract.Options{}, arg("domain", "src/domain"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	d := out.Diagnostics[0]
	assert.Equal(t, diag.PurityViolation, d.Code)
	assert.Equal(t, source.At("src/domain/a.ts", 1, 0), d.Primary)
	assert.Contains(t, d.Message, `"fs"`)
}

func TestPuritySkipsNestedRegions(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/domain/a.ts":       "import os from 'os';\n",
		"src/domain/ports/b.ts": "import fs from 'fs';\n",
	})
	c := mk(contract.Purity, contract.Options{Nested: []source.Location{source.NewLocation("src/domain/ports")}},
		arg("domain", "src/domain"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "src/domain/a.ts", out.Diagnostics[0].Primary.File)
	assert.Equal(t, []string{"src/domain/a.ts"}, out.Touched)
}

func TestDenylistOverrides(t *testing.T) {
	d, err := LoadDenylist("typescript", []string{"lodash", "@aws-sdk/client-s3"}, []string{"crypto"})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Version())

	_, denied := d.Denied("crypto")
	assert.False(t, denied)
	m, denied := d.Denied("lodash/fp")
	assert.True(t, denied)
	assert.Equal(t, "lodash", m)
	m, denied = d.Denied("@aws-sdk/client-s3/commands")
	assert.True(t, denied)
	assert.Equal(t, "@aws-sdk/client-s3", m)
	m, denied = d.Denied("node:child_process")
	assert.True(t, denied)
	assert.Equal(t, "child_process", m)

	g, err := LoadDenylist("go", nil, []string{"time"})
	require.NoError(t, err)
	m, denied = g.Denied("net/http")
	assert.True(t, denied)
	assert.Equal(t, "net", m)
	_, denied = g.Denied("time")
	assert.False(t, denied)
	_, denied = g.Denied("network/x")
	assert.False(t, denied)

	_, err = LoadDenylist("cobol", nil, nil)
	assert.Error(t, err)
}

func TestNoCyclesReportsOnePerComponent(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/a/x.ts": "import { y } from '../b/y';\n",
		"src/b/y.ts": "import { z } from '../c/z';\n",
		"src/c/z.ts": "import { x } from '../a/x';\n",
		"src/d/w.ts": "import { x } from '../a/x';\n",
	})
	c := mk(contract.NoCycles, contract.Options{},
		arg("a", "src/a"), arg("b", "src/b"), arg("c", "src/c"), arg("d", "src/d"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	d := out.Diagnostics[0]
	assert.Equal(t, diag.CycleViolation, d.Code)
	assert.Equal(t, source.At("src/c/z.ts", 1, 0), d.Primary)
	assert.Equal(t, "dependency cycle between a, b, c: a -> b -> c -> a", d.Message)
	require.Len(t, d.Notes, 2)
	assert.Equal(t, source.At("src/a/x.ts", 1, 0), d.Notes[0].Ref)
}

func TestNoCyclesDeepestRegionAndSelfImport(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		// domain.model is listed, so files inside it belong to it, not to domain
		"src/domain/model/m.ts": "import { s } from '../service';\n",
		"src/domain/service.ts": "import { m } from './model/m';\n",
		"src/app/self.ts":       "import { self } from './self';\n",
	})
	c := mk(contract.NoCycles, contract.Options{},
		arg("app", "src/app"), arg("domain", "src/domain"), arg("domain.model", "src/domain/model"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 2)
	assert.Equal(t, source.At("src/app/self.ts", 1, 0), out.Diagnostics[0].Primary)
	assert.Contains(t, out.Diagnostics[0].Message, "imports itself")
	assert.Contains(t, out.Diagnostics[1].Message, "domain, domain.model")
}

func TestNoCyclesWitnessIgnoresScanOrder(t *testing.T) {
	specs := map[string][]imports.Spec{
		"src/a/1.ts": {{Module: "../b/x", Resolved: "src/b/x.ts", Line: 1}},
		"src/b/x.ts": {
			{Module: "../a/2", Resolved: "src/a/2.ts", Line: 7},
			{Module: "../a/1", Resolved: "src/a/1.ts", Line: 3},
		},
	}
	env := newEnv(t, "typescript", "", map[string]string{"src/a/1.ts": "", "src/a/2.ts": "", "src/b/x.ts": ""})
	env.Imports = imports.Static{Specs: specs}
	c := mk(contract.NoCycles, contract.Options{}, arg("a", "src/a"), arg("b", "src/b"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, source.At("src/b/x.ts", 3, 0), out.Diagnostics[0].Primary)
}

func TestMustImplementTypeScript(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/domain/ports/repo.ts": "export interface UserRepo {\n  find(id: string): string;\n}\n" +
			"export interface Mailer {\n  send(): void;\n}\n" +
			"export interface Clock {\n  now(): number;\n}\n" +
			"interface Internal {}\n",
		"src/infra/adapters/pg.ts":    "import { UserRepo } from '../../domain/ports/repo';\nexport class PgRepo implements UserRepo {}\n",
		"src/infra/adapters/clock.ts": "export const clock: Clock = { now: () => 1 };\n",
	})
	c := mk(contract.MustImplement, contract.Options{}, arg("domain.ports", "src/domain/ports"), arg("infra.adapters", "src/infra/adapters"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	d := out.Diagnostics[0]
	assert.Equal(t, diag.MustImplementViolation, d.Code)
	assert.Equal(t, "src/domain/ports/repo.ts", d.Primary.File)
	assert.Equal(t, uint32(4), d.Primary.Line)
	assert.Contains(t, d.Message, "Mailer")
}

func TestMustImplementGoMethodSets(t *testing.T) {
	env := newEnv(t, "go", "example.com/shop", map[string]string{
		"internal/ports/ports.go": "package ports\n\ntype Store interface {\n\tFind(id string) error\n\tSave() error\n}\n\n" +
			"type Notifier interface {\n\tNotify() error\n}\n\ntype Clock interface {\n\tNow() int\n}\n",
		"internal/adapters/store.go": "package adapters\n\ntype store struct{}\n\nfunc (s *store) Find(id string) error { return nil }\n",
		"internal/adapters/save.go":  "package adapters\n\nfunc (s *store) Save() error { return nil }\n",
		"internal/adapters/clock.go": "package adapters\n\nimport \"example.com/shop/internal/ports\"\n\ntype clock struct{}\n\nvar _ ports.Clock = clock{}\n",
	})
	c := mk(contract.MustImplement, contract.Options{}, arg("ports", "internal/ports"), arg("adapters", "internal/adapters"))
	out := run(t, env, c)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, uint32(8), out.Diagnostics[0].Primary.Line)
	assert.Contains(t, out.Diagnostics[0].Message, "Notifier")
}

func TestExists(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{"src/domain/a.ts": ""})
	ok := mk(contract.Exists, contract.Options{}, arg("domain", "src/domain"))
	assert.Empty(t, run(t, env, ok).Diagnostics)

	missing := mk(contract.Exists, contract.Options{}, arg("shared", "src/shared"))
	out := run(t, env, missing)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, diag.FilesystemViolation, out.Diagnostics[0].Code)
	assert.Equal(t, declAt, out.Diagnostics[0].Primary)

	pattern := mk(contract.Exists, contract.Options{}, arg("specs", "src/**/*.spec.ts"))
	out = run(t, env, pattern)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0].Message, "no file matches")
}

func TestMirrors(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/a.ts":      "",
		"src/b/c.ts":    "",
		"test/a.ts":     "",
		"test/extra.ts": "",
	})
	one := mk(contract.Mirrors, contract.Options{}, arg("src", "src"), arg("test", "test"))
	out := run(t, env, one)
	require.Len(t, out.Diagnostics, 1)
	d := out.Diagnostics[0]
	assert.Equal(t, source.At("src/b/c.ts", 1, 0), d.Primary)
	require.Len(t, d.Fixes, 1)
	assert.Equal(t, "create-mirror", d.Fixes[0].Name)
	assert.Contains(t, d.Fixes[0].Description, "test/b/c.ts")

	both := mk(contract.Mirrors, contract.Options{Bidirectional: true}, arg("src", "src"), arg("test", "test"))
	out = run(t, env, both)
	require.Len(t, out.Diagnostics, 2)
	assert.Equal(t, "test/extra.ts", out.Diagnostics[1].Primary.File)
}

type failingProvider struct{ bad string }

func (f failingProvider) Imports(_ context.Context, file string) ([]imports.Spec, error) {
	if file == f.bad {
		return nil, errors.New("boom")
	}
	return []imports.Spec{{Module: "../infra/x", Resolved: "src/infra/x.ts", Line: 1}}, nil
}

func TestUnreadableFilesAreSkipped(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/domain/a.ts": "",
		"src/domain/b.ts": "",
		"src/infra/x.ts":  "",
	})
	env.Imports = failingProvider{bad: "src/domain/a.ts"}
	c := mk(contract.NoDependency, contract.Options{}, arg("domain", "src/domain"), arg("infra", "src/infra"))
	out := run(t, env, c)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "src/domain/a.ts", out.Skipped[0].File)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "src/domain/b.ts", out.Diagnostics[0].Primary.File)
}

func TestCheckStopsOnCancel(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{"src/domain/a.ts": "import x from 'fs';\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, env, mk(contract.Purity, contract.Options{}, arg("domain", "src/domain")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEveryTypeHasChecker(t *testing.T) {
	for _, typ := range contract.AllTypes() {
		n := typ.Arity()
		if n < 0 {
			n = 2
		}
		args := make([]contract.Arg, n)
		for i := range args {
			args[i] = arg("m", "m")
		}
		out, err := Check(context.Background(), &Env{}, contract.New("app", typ, args, declAt, contract.Options{}))
		require.NoError(t, err, typ.String())
		assert.Empty(t, out.Diagnostics, typ.String())
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	env := newEnv(t, "typescript", "", map[string]string{
		"src/a/x.ts": "import { y } from '../b/y';\nimport fs from 'fs';\n",
		"src/b/y.ts": "import { x } from '../a/x';\n",
	})
	for _, c := range []*contract.Contract{
		mk(contract.NoCycles, contract.Options{}, arg("a", "src/a"), arg("b", "src/b")),
		mk(contract.Purity, contract.Options{}, arg("a", "src/a")),
	} {
		first := run(t, env, c)
		second := run(t, env, c)
		assert.Equal(t, diag.FormatShort(first.Diagnostics, true), diag.FormatShort(second.Diagnostics, true))
	}
}
