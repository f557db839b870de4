package check

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed denylist.toml
var denylistData string

type denylistFile struct {
	Version   int                     `toml:"version"`
	Languages map[string]denylistLang `toml:"languages"`
}

type denylistLang struct {
	Modules []string `toml:"modules"`
}

// Denylist is the set of platform modules a pure region must not import.
type Denylist struct {
	lang    string
	version int
	modules map[string]struct{}
}

// LoadDenylist returns the built-in list for lang, extended with extra and
// with allow removed.
func LoadDenylist(lang string, extra, allow []string) (*Denylist, error) {
	var f denylistFile
	meta, err := toml.Decode(denylistData, &f)
	if err != nil {
		return nil, fmt.Errorf("denylist: %w", err)
	}
	if !meta.IsDefined("languages", lang) {
		return nil, fmt.Errorf("denylist: no entry for language %q", lang)
	}
	d := &Denylist{lang: lang, version: f.Version, modules: make(map[string]struct{})}
	for _, m := range f.Languages[lang].Modules {
		d.modules[d.normalize(m)] = struct{}{}
	}
	for _, m := range extra {
		d.modules[d.normalize(m)] = struct{}{}
	}
	for _, m := range allow {
		delete(d.modules, d.normalize(m))
	}
	return d, nil
}

func (d *Denylist) Version() int { return d.version }

func (d *Denylist) Len() int { return len(d.modules) }

func (d *Denylist) normalize(spec string) string {
	spec = strings.TrimSpace(spec)
	if d.lang == "go" {
		return strings.Trim(spec, "/")
	}
	return strings.TrimPrefix(spec, "node:")
}

// Denied reports whether spec names a denied module and returns that entry.
func (d *Denylist) Denied(spec string) (string, bool) {
	spec = d.normalize(spec)
	if spec == "" {
		return "", false
	}
	if d.lang == "go" {
		// "net/http" is covered by "net"
		for cur := spec; ; {
			if _, ok := d.modules[cur]; ok {
				return cur, true
			}
			i := strings.LastIndexByte(cur, '/')
			if i < 0 {
				return "", false
			}
			cur = cur[:i]
		}
	}
	root := packageRoot(spec)
	if _, ok := d.modules[spec]; ok {
		return spec, true
	}
	if _, ok := d.modules[root]; ok {
		return root, true
	}
	return "", false
}

// packageRoot drops sub-paths: "fs/promises" -> "fs", "@a/b/c" -> "@a/b".
func packageRoot(spec string) string {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
