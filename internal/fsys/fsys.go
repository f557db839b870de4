// Package fsys is the filesystem collaborator used by checkers: existence
// tests, recursive listing and file reads over project-relative slash paths.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"keystone/internal/source"
)

// FS answers the three questions checkers ask of a project tree.
// All paths are project-relative and slash-separated; "" is the root.
type FS interface {
	Exists(path string) bool
	// ListFiles returns every regular file under dir, recursively, sorted.
	ListFiles(dir string) ([]string, error)
	ReadFile(path string) ([]byte, error)
}

// Dir adapts an io/fs.FS (os.DirFS in the CLI, fstest.MapFS in tests).
type Dir struct {
	fsys    fs.FS
	exclude []string
}

// New wraps fsys; files matching any exclude glob are invisible to ListFiles.
func New(fsys fs.FS, exclude ...string) (*Dir, error) {
	for _, pat := range exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
	}
	return &Dir{fsys: fsys, exclude: exclude}, nil
}

func fsPath(p string) string {
	p = source.CleanPath(p)
	if p == "" {
		return "."
	}
	return p
}

func (d *Dir) Exists(path string) bool {
	_, err := fs.Stat(d.fsys, fsPath(path))
	return err == nil
}

func (d *Dir) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(d.fsys, fsPath(path))
}

func (d *Dir) ListFiles(dir string) ([]string, error) {
	root := fsPath(dir)
	info, err := fs.Stat(d.fsys, root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if d.excluded(root) {
			return nil, nil
		}
		return []string{root}, nil
	}
	var files []string
	err = fs.WalkDir(d.fsys, root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if p != root && d.excluded(p) {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Type().IsRegular() && !d.excluded(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func (d *Dir) excluded(p string) bool {
	for _, pat := range d.exclude {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
		// "**/node_modules/**" должен отсекать и сам каталог
		if dirPat, ok := strings.CutSuffix(pat, "/**"); ok {
			if m, _ := doublestar.Match(dirPat, p); m {
				return true
			}
		}
	}
	return false
}

// Files lists the files a location covers. A missing plain location yields
// no files and no error; checkers treat absence as "nothing to check".
func Files(f FS, loc source.Location) ([]string, error) {
	base := loc.Path
	if loc.Pattern {
		base = loc.Base()
	}
	if !f.Exists(base) {
		return nil, nil
	}
	files, err := f.ListFiles(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !loc.Pattern {
		return files, nil
	}
	out := files[:0]
	for _, file := range files {
		if loc.Matches(file) {
			out = append(out, file)
		}
	}
	return out, nil
}

// LocationExists reports whether a plain location exists, or whether a
// pattern location matches at least one file.
func LocationExists(f FS, loc source.Location) bool {
	if !loc.Pattern {
		return f.Exists(loc.Path)
	}
	files, err := Files(f, loc)
	return err == nil && len(files) > 0
}

// HasExtension reports whether file ends with one of exts.
func HasExtension(file string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}
