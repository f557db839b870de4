package diag

import (
	"testing"

	"keystone/internal/contract"
	"keystone/internal/source"
)

func TestCodeRange(t *testing.T) {
	for _, typ := range contract.AllTypes() {
		c := ForContract(typ)
		if !IsEngineCode(c) || !c.IsViolation() {
			t.Fatalf("%s maps to %d outside the violation range", typ, c)
		}
	}
	if ForContract(contract.Exists) != ForContract(contract.Mirrors) {
		t.Fatalf("exists and mirrors must share a code")
	}
	if IsEngineCode(42) || IsEngineCode(71000) {
		t.Fatalf("range membership is too wide")
	}
	if got := NoDependencyViolation.ID(); got != "KS70001" {
		t.Fatalf("ID = %q", got)
	}
	if !DefUnknownKind.IsDefinition() || IOSkippedFiles.IsDefinition() {
		t.Fatalf("definition range mismatch")
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	a := NewError(CycleViolation, source.At("src/b.ts", 1, 0), "cycle")
	b := NewError(NoDependencyViolation, source.At("src/a.ts", 3, 4), "dep")
	c := NewError(NoDependencyViolation, source.At("src/a.ts", 3, 0), "dep")
	w := New(SevWarning, NoDependencyViolation, source.At("src/a.ts", 3, 0), "dep")

	bag := NewBag(0)
	for _, d := range []Diagnostic{a, b, w, c} {
		bag.Add(d)
	}
	bag.Sort()
	got := bag.Items()
	if got[0].Severity != SevError || got[0].Primary.Col != 0 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Severity != SevWarning || got[2].Primary.Col != 4 || got[3].Primary.File != "src/b.ts" {
		t.Fatalf("order = %+v", got)
	}
}

func TestBagLimitAndTruncate(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(CycleViolation, source.Ref{}, "x")) {
		t.Fatalf("first add must succeed")
	}
	if bag.Add(NewError(CycleViolation, source.Ref{}, "y")) {
		t.Fatalf("add over limit must fail")
	}

	open := NewBag(0)
	open.Add(New(SevWarning, IOSkippedFiles, source.Ref{}, "skipped"))
	if open.HasErrors() {
		t.Fatalf("a warning is not an error")
	}
	open.Add(NewError(PurityViolation, source.Ref{}, "z"))
	open.Add(NewError(CycleViolation, source.Ref{}, "w"))
	if !open.HasErrors() || open.CountErrors() != 2 {
		t.Fatalf("errors = %d", open.CountErrors())
	}
	if dropped := open.Truncate(1); dropped != 2 || open.Len() != 1 {
		t.Fatalf("truncate dropped %d", dropped)
	}
}

func TestSeverityLabels(t *testing.T) {
	if SevError.String() != "error" || SevWarning.String() != "warning" || Severity(0).String() != "unknown" {
		t.Fatalf("labels = %s %s %s", SevError, SevWarning, Severity(0))
	}
	if !SevError.Fails() || SevWarning.Fails() {
		t.Fatalf("only errors fail a run")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	at := source.At("src/a.ts", 2, 0)
	ReportError(r, PurityViolation, at, "fs").Emit()
	ReportError(r, PurityViolation, at, "fs").Emit()
	ReportError(r, PurityViolation, at, "net").Emit()
	if bag.Len() != 2 {
		t.Fatalf("dedup kept %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	c := contract.New("app", contract.Purity, []contract.Arg{{Path: "domain"}}, source.Ref{}, contract.Options{})
	b := ReportViolation(BagReporter{Bag: bag}, c, source.At("src/a.ts", 1, 0), "impure").
		WithNote(source.At("arch.yaml", 3, 2), "declared here").
		WithFix("remove-import", "remove the import")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("emitted %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Contract != c || d.Code != PurityViolation || len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		NewError(PurityViolation, source.At("src/b.ts", 1, 0), "imports fs"),
		NewError(NoDependencyViolation, source.At("src/a.ts", 3, 0), "domain\nimports infra").
			WithNote(source.At("arch.yaml", 2, 4), "declared here"),
	}
	got := FormatShort(diags, true)
	want := "note KS70001 arch.yaml:2:5 declared here\n" +
		"error KS70001 src/a.ts:3:1 domain imports infra\n" +
		"error KS70003 src/b.ts:1:1 imports fs"
	if got != want {
		t.Fatalf("FormatShort =\n%s\nwant\n%s", got, want)
	}
}
