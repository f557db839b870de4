package diagfmt

import (
	"path"

	"keystone/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints project-relative paths.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строки контекста вокруг позиции
	PathMode  PathMode
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
	IncludeFixes bool
	Summary      *Summary
}

// Summary is the run-level part of JSON and pretty output.
type Summary struct {
	FilesAnalyzed    int  `json:"files_analyzed"`
	Contracts        int  `json:"contracts"`
	Violations       int  `json:"violations"`
	DefinitionErrors int  `json:"definition_errors"`
	Truncated        int  `json:"truncated,omitempty"`
	OK               bool `json:"ok"`
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

// Sources resolves project files for snippets and absolute paths.
// A nil *Sources disables both.
type Sources struct {
	Files *source.FileSet
	Read  func(path string) ([]byte, error)
}

func (s *Sources) file(p string) *source.File {
	if s == nil || s.Files == nil || s.Read == nil || p == "" {
		return nil
	}
	f, err := s.Files.Load(p, s.Read)
	if err != nil {
		return nil
	}
	return f
}

func (s *Sources) display(p string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if s != nil && s.Files != nil {
			return s.Files.Abs(p)
		}
	case PathModeBasename:
		return path.Base(p)
	}
	return p
}
