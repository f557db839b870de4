package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"keystone/internal/decl"
	"keystone/internal/diagfmt"
	"keystone/internal/fsys"
	"keystone/internal/generate"
	"keystone/internal/project"
)

const sampleDefinition = `kinds:
  Domain:
    pure: true
architectures:
  app:
    location: src
    members:
      domain:
        kind: Domain
      application: application
      infrastructure: infrastructure
    constraints:
      noDependency:
        - [domain, infrastructure]
      noCycles: [domain, application]
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		project.ManifestName:       "[project]\nname = \"app\"\ndefinition = \"architecture.yaml\"\n",
		"architecture.yaml":        sampleDefinition,
		"src/domain/user.ts":       "import { db } from '../infrastructure/db';\nimport fs from 'fs';\n",
		"src/domain/order.ts":      "import { svc } from '../application/svc';\n",
		"src/application/svc.ts":   "import { order } from '../domain/order';\n",
		"src/infrastructure/db.ts": "export const db = 1;\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommandShortFormat(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "check", root, "--format", "short", "--ui", "off", "--color", "off")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	want := `error KS70004 src/domain/order.ts:1:1 dependency cycle between application, domain: application -> domain -> application
error KS70001 src/domain/user.ts:1:1 domain must not depend on infrastructure: import of "../infrastructure/db"
error KS70003 src/domain/user.ts:2:1 domain must be pure: imports platform module "fs"
`
	if out != want {
		t.Fatalf("output mismatch:\n%s\nwant:\n%s", out, want)
	}
}

func TestContractsCommandJSON(t *testing.T) {
	root := writeProject(t)
	out, err := execute(t, "contracts", root, "--format", "json", "--type", "purity")
	if err != nil {
		t.Fatalf("contracts: %v", err)
	}
	var list []contractJSON
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(list) != 1 || list[0].Type != "purity" || list[0].Args[0] != "src/domain" {
		t.Fatalf("contracts = %+v", list)
	}
}

func TestInitCommandWritesStarter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "architecture.yaml") {
		t.Fatalf("output = %q", out)
	}
	m, err := project.LoadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Config.Project.Name != "shop" || m.Config.Project.Language != project.LangTypeScript {
		t.Fatalf("config = %+v", m.Config.Project)
	}
	if _, err := execute(t, "init", dir); err == nil {
		t.Fatalf("second init must fail")
	}
}

func TestStarterDefinitionIsValid(t *testing.T) {
	for _, lang := range []string{project.LangTypeScript, project.LangGo} {
		reg := generate.NewRegistry()
		def, err := decl.Parse(reg, definitionFile, []byte(starterDefinition("my app", lang)))
		if err != nil {
			t.Fatalf("%s: parse: %v", lang, err)
		}
		res := def.Generate(reg)
		if !res.OK() {
			t.Fatalf("%s: definition errors: %v", lang, res.Errors)
		}
		got := make([]string, len(res.Contracts))
		for i, c := range res.Contracts {
			got[i] = c.ID
		}
		slices.Sort(got)
		want := []string{
			"my app/mustImplement(domain.ports,infrastructure)",
			"my app/noCycles(application,domain,infrastructure)",
			"my app/noDependency(application,infrastructure)",
			"my app/noDependency(domain,application)",
			"my app/noDependency(domain,infrastructure)",
			"my app/purity(domain)",
			"my app/purity(domain.ports)",
		}
		if !slices.Equal(got, want) {
			t.Fatalf("%s: contracts = %v, want %v", lang, got, want)
		}
	}
}

func TestReadFormat(t *testing.T) {
	if f, err := readFormat(" JSON "); err != nil || f != formatJSON {
		t.Fatalf("readFormat = %q, %v", f, err)
	}
	if _, err := readFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestReportSummary(t *testing.T) {
	rep := &report{
		definition: []generate.DefinitionError{{Msg: "bad"}},
		contracts:  2,
	}
	if !rep.failed() {
		t.Fatalf("definition errors must fail the run")
	}
	var buf bytes.Buffer
	if err := render(&buf, rep, t.TempDir(), nil, renderOpts{format: formatJSON}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Summary.DefinitionErrors != 1 || out.Summary.OK {
		t.Fatalf("output = %+v", out)
	}
}

func TestPollerDetectsContentChanges(t *testing.T) {
	mem := fstest.MapFS{
		"src/a.ts": {Data: []byte("a"), ModTime: time.Unix(1, 0)},
		"src/b.ts": {Data: []byte("b"), ModTime: time.Unix(1, 0)},
	}
	files, err := fsys.New(mem)
	if err != nil {
		t.Fatalf("fsys: %v", err)
	}
	p := newPoller("", files)
	p.stat = func(name string) (os.FileInfo, error) {
		return mem.Stat(filepath.ToSlash(name))
	}

	if changed, err := p.scan(); err != nil || len(changed) != 0 {
		t.Fatalf("baseline scan = %v, %v", changed, err)
	}
	// touch без изменения содержимого
	mem["src/a.ts"].ModTime = time.Unix(2, 0)
	if changed, _ := p.scan(); len(changed) != 0 {
		t.Fatalf("touch reported as change: %v", changed)
	}
	mem["src/b.ts"] = &fstest.MapFile{Data: []byte("b2"), ModTime: time.Unix(3, 0)}
	mem["src/c.ts"] = &fstest.MapFile{Data: []byte("c"), ModTime: time.Unix(3, 0)}
	delete(mem, "src/a.ts")
	changed, err := p.scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Join(changed, ",") != "src/a.ts,src/b.ts,src/c.ts" {
		t.Fatalf("changed = %v", changed)
	}
}

func TestReadUIMode(t *testing.T) {
	if m, err := readUIMode("OFF"); err != nil || m != uiModeOff {
		t.Fatalf("readUIMode = %q, %v", m, err)
	}
	if shouldUseTUI(uiModeOff, os.Stderr) || !shouldUseTUI(uiModeOn, nil) {
		t.Fatalf("explicit modes must win")
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatalf("expected error")
	}

	t.Setenv(envUI, "off")
	if m, err := uiFromFlagOrEnv("auto", false); err != nil || m != uiModeOff {
		t.Fatalf("env mode = %q, %v", m, err)
	}
	if m, err := uiFromFlagOrEnv("on", true); err != nil || m != uiModeOn {
		t.Fatalf("explicit flag must beat env, got %q, %v", m, err)
	}
	t.Setenv(envUI, "sometimes")
	if _, err := uiFromFlagOrEnv("auto", false); err == nil {
		t.Fatalf("expected error for bad %s", envUI)
	}

	t.Setenv(envUI, "")
	t.Setenv("CI", "true")
	if shouldUseTUI(uiModeAuto, os.Stderr) {
		t.Fatalf("auto mode must stay off on CI")
	}
}
