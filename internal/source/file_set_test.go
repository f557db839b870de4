package source

import (
	"errors"
	"testing"
)

func TestFileSetAddNormalizes(t *testing.T) {
	fs := NewFileSet("/workspace")
	f := fs.Add("./src/a.ts", []byte("\xEF\xBB\xBFone\r\ntwo\r\nthree"), 0)

	if f.Path != "src/a.ts" {
		t.Fatalf("path = %q", f.Path)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags not recorded: %b", f.Flags)
	}
	if got := f.GetLine(2); got != "two" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.GetLine(3); got != "three" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Fatalf("line 4 = %q, want empty", got)
	}
	if f.LineCount() != 3 {
		t.Fatalf("LineCount = %d", f.LineCount())
	}
}

func TestFilePosition(t *testing.T) {
	fs := NewFileSet("")
	f := fs.Add("x.ts", []byte("ab\ncd\n"), FileVirtual)
	cases := []struct {
		off  uint32
		want Ref
	}{
		{0, Ref{File: "x.ts", Line: 1, Col: 0}},
		{2, Ref{File: "x.ts", Line: 1, Col: 2}},
		{3, Ref{File: "x.ts", Line: 2, Col: 0}},
		{4, Ref{File: "x.ts", Line: 2, Col: 1}},
	}
	for _, tc := range cases {
		if got := f.Position(tc.off); got != tc.want {
			t.Fatalf("Position(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}
}

func TestFileSetLoadCaches(t *testing.T) {
	fs := NewFileSet("")
	reads := 0
	read := func(string) ([]byte, error) {
		reads++
		return []byte("x"), nil
	}
	if _, err := fs.Load("a.ts", read); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := fs.Load("a.ts", read); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reads != 1 {
		t.Fatalf("reads = %d, want 1", reads)
	}
	fs.Forget("a.ts")
	if _, err := fs.Load("a.ts", read); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reads != 2 {
		t.Fatalf("reads after Forget = %d, want 2", reads)
	}

	boom := errors.New("boom")
	if _, err := fs.Load("b.ts", func(string) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestRefStringAndCompare(t *testing.T) {
	r := At("./src/a.ts", 3, 4)
	if r.String() != "src/a.ts:3:5" {
		t.Fatalf("String = %q", r.String())
	}
	if At("a", 1, 0).Compare(At("a", 2, 0)) >= 0 {
		t.Fatalf("line ordering broken")
	}
	if At("b", 1, 0).Compare(At("a", 9, 9)) <= 0 {
		t.Fatalf("file ordering broken")
	}
	if !(Ref{}).IsZero() {
		t.Fatalf("zero ref not zero")
	}
}
