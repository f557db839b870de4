package source

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"
)

// Location is a project-relative path (or glob pattern) owned by a symbol.
// The zero Location is the project root and matches every file.
type Location struct {
	Path    string // slash separated, cleaned, NFC
	Pattern bool   // Path is a doublestar glob
}

// NewLocation cleans p and detects glob syntax.
func NewLocation(p string) Location {
	clean := CleanPath(p)
	return Location{Path: clean, Pattern: isGlob(clean)}
}

// Join returns a location for child resolved under l.
// Absolute-looking children ("/src/x") are taken relative to the project root.
func (l Location) Join(child string) Location {
	child = strings.ReplaceAll(child, "\\", "/")
	if strings.HasPrefix(child, "/") {
		return NewLocation(child)
	}
	if l.Path == "" {
		return NewLocation(child)
	}
	return NewLocation(l.Path + "/" + child)
}

// IsRoot reports whether l covers the whole project.
func (l Location) IsRoot() bool {
	return l.Path == "" && !l.Pattern
}

// Base returns the static directory prefix of a pattern, or Path itself.
func (l Location) Base() string {
	if !l.Pattern {
		return l.Path
	}
	base, _ := doublestar.SplitPattern(l.Path)
	if base == "." {
		return ""
	}
	return base
}

// Matches decides whether file belongs to the location.
// Plain paths match by whole path segments, so "src/dom" does not own "src/domain/x.ts".
// A pattern matches the file itself or any of its parent directories.
func (l Location) Matches(file string) bool {
	file = CleanPath(file)
	if !l.Pattern {
		if l.Path == "" {
			return true
		}
		return file == l.Path || strings.HasPrefix(file, l.Path+"/")
	}
	for candidate := file; candidate != "" && candidate != "."; candidate = path.Dir(candidate) {
		ok, err := doublestar.Match(l.Path, candidate)
		if err == nil && ok {
			return true
		}
		if !strings.Contains(candidate, "/") {
			break
		}
	}
	return false
}

// Rel returns file relative to the location base. ok is false when the
// file is not under the location.
func (l Location) Rel(file string) (string, bool) {
	if !l.Matches(file) {
		return "", false
	}
	file = CleanPath(file)
	base := l.Base()
	if base == "" {
		return file, true
	}
	if file == base {
		return "", true
	}
	return strings.TrimPrefix(file, base+"/"), true
}

// Overlaps reports whether two locations can own the same file.
func (l Location) Overlaps(other Location) bool {
	switch {
	case !l.Pattern && !other.Pattern:
		return l.Matches(other.Path) || other.Matches(l.Path)
	case l.Pattern && !other.Pattern:
		// pattern covers the plain path, or lives inside it
		return l.Matches(other.Path) || other.Matches(l.Base())
	case !l.Pattern && other.Pattern:
		return other.Overlaps(l)
	default:
		if l.Path == other.Path {
			return true
		}
		a, b := NewLocation(l.Base()), NewLocation(other.Base())
		if a.IsRoot() || b.IsRoot() {
			return false
		}
		return a.Matches(b.Path) || b.Matches(a.Path)
	}
}

func (l Location) String() string {
	if l.Path == "" {
		return "."
	}
	return l.Path
}

// CleanPath normalises a project-relative path: NFC, forward slashes,
// no "./" prefix, no leading slash. The project root becomes "".
func CleanPath(p string) string {
	p = norm.NFC.String(p)
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
