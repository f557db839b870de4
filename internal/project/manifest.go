package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported project languages.
const (
	LangTypeScript = "typescript"
	LangGo         = "go"
)

var (
	// ErrNoManifest is returned when no keystone.toml is found walking up.
	ErrNoManifest = errors.New("no " + ManifestName + " found")
	// ErrProjectSectionMissing indicates that [project] is missing.
	ErrProjectSectionMissing = errors.New("missing [project]")
)

type Config struct {
	Project ProjectSection `toml:"project"`
	Check   CheckSection   `toml:"check"`
	Resolve ResolveSection `toml:"resolve"`
	Purity  PuritySection  `toml:"purity"`
	Cache   CacheSection   `toml:"cache"`
}

type ProjectSection struct {
	Name       string `toml:"name"`
	Definition string `toml:"definition"` // architecture file, relative to the root
	Language   string `toml:"language"`
}

type CheckSection struct {
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Extensions     []string `toml:"extensions"`
	Exclude        []string `toml:"exclude"`
}

type ResolveSection struct {
	Module string            `toml:"module"` // go module path; read from go.mod when empty
	Paths  map[string]string `toml:"paths"`  // specifier prefix -> project dir
}

type PuritySection struct {
	Extra []string `toml:"extra"`
	Allow []string `toml:"allow"`
}

type CacheSection struct {
	Size int  `toml:"size"`
	Disk bool `toml:"disk"`
}

// Manifest is a loaded keystone.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefinitionPath returns the architecture definition's absolute path.
func (m *Manifest) DefinitionPath() string {
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Project.Definition))
}

// LoadManifest finds keystone.toml above startDir and loads it.
func LoadManifest(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(path)
	if cfg.Project.Language == LangGo && cfg.Resolve.Module == "" {
		module, err := GoModulePath(root)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg.Resolve.Module = module
	}
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

// LoadConfig decodes and validates one manifest file, filling defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	if !meta.IsDefined("project", "definition") || strings.TrimSpace(cfg.Project.Definition) == "" {
		return Config{}, fmt.Errorf("%s: missing [project].definition", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	switch c.Project.Language {
	case "":
		c.Project.Language = LangTypeScript
	case LangTypeScript, LangGo:
	default:
		return fmt.Errorf("[project].language must be %q or %q, got %q", LangTypeScript, LangGo, c.Project.Language)
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0")
	}
	if len(c.Check.Extensions) == 0 {
		c.Check.Extensions = DefaultExtensions(c.Project.Language)
	}
	if c.Check.Exclude == nil {
		c.Check.Exclude = DefaultExclude(c.Project.Language)
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 512
	}
	return nil
}

func DefaultExtensions(lang string) []string {
	if lang == LangGo {
		return []string{".go"}
	}
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}
}

func DefaultExclude(lang string) []string {
	if lang == LangGo {
		return []string{"**/vendor/**", "**/testdata/**", "**/.git/**"}
	}
	return []string{"**/node_modules/**", "**/dist/**", "**/.git/**"}
}

// Template renders a starter keystone.toml for `keystone init`.
func Template(name, lang, definition string) ([]byte, error) {
	cfg := Config{
		Project: ProjectSection{Name: name, Definition: definition, Language: lang},
		Check: CheckSection{
			Extensions: DefaultExtensions(lang),
			Exclude:    DefaultExclude(lang),
		},
		Cache: CacheSection{Size: 512},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
