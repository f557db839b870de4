package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Ref points at a position in a project file.
// Line is 1-based, Col is 0-based (byte column), matching tree-sitter points.
type Ref struct {
	File string
	Line uint32
	Col  uint32
}

// At builds a Ref for file at line/col.
func At(file string, line, col uint32) Ref {
	return Ref{File: CleanPath(file), Line: line, Col: col}
}

// AtInt is At for int positions coming from decoders (yaml nodes are 1-based in both axes).
func AtInt(file string, line, col int) Ref {
	l, err := safecast.Conv[uint32](max(line, 0))
	if err != nil {
		panic(fmt.Errorf("line overflow: %w", err))
	}
	c, err := safecast.Conv[uint32](max(col, 0))
	if err != nil {
		panic(fmt.Errorf("column overflow: %w", err))
	}
	return At(file, l, c)
}

// IsZero reports whether the ref carries no position.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// String renders file:line:col with a 1-based column for humans.
func (r Ref) String() string {
	if r.Line == 0 {
		return r.File
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Col+1)
}

// Compare orders refs by file, line, column.
func (r Ref) Compare(o Ref) int {
	switch {
	case r.File != o.File:
		if r.File < o.File {
			return -1
		}
		return 1
	case r.Line != o.Line:
		if r.Line < o.Line {
			return -1
		}
		return 1
	case r.Col != o.Col:
		if r.Col < o.Col {
			return -1
		}
		return 1
	}
	return 0
}
