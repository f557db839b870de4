package source

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
)

// FileFlags encodes metadata about a loaded file.
type FileFlags uint8

const (
	// FileVirtual indicates the file was added from memory (test, editor overlay).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures normalised content and a line index for one project file.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// FileSet caches file contents by project-relative path.
// Renderers use it to print source lines next to diagnostics.
type FileSet struct {
	mu      sync.RWMutex
	files   map[string]*File
	baseDir string // корень проекта на диске, для абсолютных путей
}

// NewFileSet creates an empty FileSet rooted at baseDir.
func NewFileSet(baseDir string) *FileSet {
	return &FileSet{
		files:   make(map[string]*File),
		baseDir: baseDir,
	}
}

// BaseDir returns the on-disk project root.
func (fileSet *FileSet) BaseDir() string {
	return fileSet.baseDir
}

// Add stores content under path, replacing any previous version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) *File {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	f := &File{
		Path:    CleanPath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
	fileSet.mu.Lock()
	fileSet.files[f.Path] = f
	fileSet.mu.Unlock()
	return f
}

// Load returns the cached file or reads it through read.
func (fileSet *FileSet) Load(path string, read func(string) ([]byte, error)) (*File, error) {
	if f, ok := fileSet.Get(path); ok {
		return f, nil
	}
	content, err := read(CleanPath(path))
	if err != nil {
		return nil, err
	}
	return fileSet.Add(path, content, 0), nil
}

// Get returns a previously added file.
func (fileSet *FileSet) Get(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f, ok := fileSet.files[CleanPath(path)]
	return f, ok
}

// Forget drops the cached version of path.
func (fileSet *FileSet) Forget(path string) {
	fileSet.mu.Lock()
	delete(fileSet.files, CleanPath(path))
	fileSet.mu.Unlock()
}

// Abs joins a project-relative path with the base directory.
func (fileSet *FileSet) Abs(path string) string {
	if fileSet.baseDir == "" {
		return path
	}
	return filepath.Join(fileSet.baseDir, filepath.FromSlash(path))
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}
	return string(f.Content[start:end])
}

// LineCount reports the number of lines in the file.
func (f *File) LineCount() int {
	if len(f.Content) == 0 {
		return 0
	}
	n := len(f.LineIdx)
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// Position converts a byte offset into a Ref (1-based line, 0-based column).
func (f *File) Position(off uint32) Ref {
	lc := toLineCol(f.LineIdx, off)
	return Ref{File: f.Path, Line: lc.Line, Col: lc.Col - 1}
}
