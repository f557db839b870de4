package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\ndefinition = \"arch.yaml\"\n")
	nested := filepath.Join(root, "src", "domain")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot = %q, %v, %v", got, ok, err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Fatalf("root = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\nname = \"shop\"\ndefinition = \"arch.yaml\"\n")
	m, err := LoadManifest(root)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Config.Project.Language != LangTypeScript {
		t.Fatalf("language = %q", m.Config.Project.Language)
	}
	if len(m.Config.Check.Extensions) == 0 || m.Config.Check.Extensions[0] != ".ts" {
		t.Fatalf("extensions = %v", m.Config.Check.Extensions)
	}
	if m.Config.Cache.Size != 512 {
		t.Fatalf("cache size = %d", m.Config.Cache.Size)
	}
	if m.DefinitionPath() != filepath.Join(m.Root, "arch.yaml") {
		t.Fatalf("definition path = %q", m.DefinitionPath())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]string{
		"no project":   "[check]\njobs = 2\n",
		"no def":       "[project]\nname = \"x\"\n",
		"bad language": "[project]\ndefinition = \"a.yaml\"\nlanguage = \"rust\"\n",
		"unknown key":  "[project]\ndefinition = \"a.yaml\"\nfoo = 1\n",
		"bad toml":     "[project\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), ManifestName)
		writeFile(t, path, content)
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "[check]\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrProjectSectionMissing) {
		t.Fatalf("expected ErrProjectSectionMissing, got %v", err)
	}
}

func TestLoadManifestReadsGoModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\ndefinition = \"arch.yaml\"\nlanguage = \"go\"\n")
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	m, err := LoadManifest(root)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Config.Resolve.Module != "example.com/shop" {
		t.Fatalf("module = %q", m.Config.Resolve.Module)
	}
	if m.Config.Check.Extensions[0] != ".go" {
		t.Fatalf("extensions = %v", m.Config.Check.Extensions)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	data, err := Template("shop", LangGo, "architecture.yaml")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if !strings.Contains(string(data), "[project]") {
		t.Fatalf("template lacks [project]:\n%s", data)
	}
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, string(data))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(template): %v", err)
	}
	if cfg.Project.Name != "shop" || cfg.Project.Language != LangGo {
		t.Fatalf("cfg = %+v", cfg.Project)
	}
}

func TestLoadEnvFileAndProcessPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), EnvJobs+"=3\n"+EnvTraceLevel+"=debug\n")
	t.Setenv(EnvTraceLevel, "phase")
	t.Setenv(EnvJobs, "")
	os.Unsetenv(EnvJobs)
	env, err := LoadEnv(root)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.Jobs != 3 {
		t.Fatalf("jobs = %d", env.Jobs)
	}
	if env.TraceLevel != "phase" {
		t.Fatalf("trace level = %q, process env must win", env.TraceLevel)
	}
}

func TestLoadEnvRejectsBadJobs(t *testing.T) {
	t.Setenv(EnvJobs, "many")
	if _, err := LoadEnv(t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDigest(t *testing.T) {
	a := DigestOf([]byte("x"))
	if a.IsZero() || a != DigestOf([]byte("x")) || a == DigestOf([]byte("y")) {
		t.Fatalf("digest mismatch")
	}
}
