package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"keystone/internal/contract"
	"keystone/internal/diag"
	"keystone/internal/source"
)

func sample() []diag.Diagnostic {
	c := contract.New("app", contract.NoDependency, []contract.Arg{{Path: "domain"}, {Path: "infra"}}, source.At("architecture.yaml", 12, 8), contract.Options{})
	v := diag.Violation(c, source.At("src/domain/a.ts", 2, 2), `domain must not depend on infra: import of "../infra/db"`).
		WithNote(source.At("src/infra/db.ts", 1, 0), "resolved here").
		WithFix("remove-import", `remove the import of "../infra/db"`)
	w := diag.New(diag.SevWarning, diag.IOSkippedFiles, source.Ref{}, "1 file(s) could not be read and were skipped").
		WithNote(source.Ref{File: "src/broken.ts"}, "permission denied")
	return []diag.Diagnostic{v, w}
}

func sources() *Sources {
	files := map[string]string{
		"src/domain/a.ts": "// header\n\t import { db } from '../infra/db';\n",
	}
	return &Sources{
		Files: source.NewFileSet("/work/shop"),
		Read: func(p string) ([]byte, error) {
			return []byte(files[p]), nil
		},
	}
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sample(), sources(), PrettyOpts{ShowNotes: true, ShowFixes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := `src/domain/a.ts:2:3: error KS70001: domain must not depend on infra: import of "../infra/db"
2 |      import { db } from '../infra/db';
  |      ^
  note: src/infra/db.ts:1:1: resolved here
  contract: domain must not depend on infra (declared at architecture.yaml:12:9)
  fix[remove-import]: remove the import of "../infra/db"

warning KS70201: 1 file(s) could not be read and were skipped
  note: src/broken.ts: permission denied
`
	if buf.String() != want {
		t.Fatalf("pretty output mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyContextAndPaths(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sample()[:1], sources(), PrettyOpts{Context: 1, PathMode: PathModeAbsolute}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "/work/shop/src/domain/a.ts:2:3:") {
		t.Fatalf("absolute path missing:\n%s", out)
	}
	if !strings.Contains(out, "1 | // header") {
		t.Fatalf("context line missing:\n%s", out)
	}
	if strings.Contains(out, "note:") {
		t.Fatalf("notes must be hidden:\n%s", out)
	}
}

func TestPrettySummary(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettySummary(&buf, Summary{Contracts: 3, FilesAnalyzed: 10, Violations: 2, Truncated: 1}, false); err != nil {
		t.Fatalf("PrettySummary: %v", err)
	}
	if got := buf.String(); got != "failed: 3 contract(s), 10 file(s), 2 violation(s), 0 definition error(s) (1 not shown)\n" {
		t.Fatalf("summary = %q", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	summary := &Summary{Violations: 1}
	if err := JSON(&buf, sample(), nil, JSONOpts{IncludeNotes: true, IncludeFixes: true, Summary: summary}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || out.Summary == nil || out.Summary.Violations != 1 {
		t.Fatalf("output = %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Code != "KS70001" || first.Severity != "error" || first.Location != (LocationJSON{File: "src/domain/a.ts", Line: 2, Column: 3}) {
		t.Fatalf("first = %+v", first)
	}
	if first.Contract == nil || first.Contract.Type != "noDependency" || first.Contract.Declared.Line != 12 {
		t.Fatalf("contract = %+v", first.Contract)
	}
	if len(first.Fixes) != 1 || first.Fixes[0].Name != "remove-import" {
		t.Fatalf("fixes = %+v", first.Fixes)
	}
	if out.Diagnostics[1].Location.File != "" {
		t.Fatalf("summary warning must have no location: %+v", out.Diagnostics[1].Location)
	}

	buf.Reset()
	if err := JSON(&buf, sample(), nil, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || out.Count != 1 {
		t.Fatalf("max not applied: %+v %v", out, err)
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, sample(), SarifRunMeta{ToolName: "keystone", ToolVersion: "1.0.0", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 || run.Tool.Driver.Rules[0].ID != "KS70001" {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("errors must mark the run unsuccessful")
	}
	r := run.Results[0]
	if r.Level != "error" || r.RuleIndex != 0 || r.Locations[0].PhysicalLocation.Region.StartColumn != 3 {
		t.Fatalf("result = %+v", r)
	}
	if w := run.Results[1]; w.Level != "warning" || w.RuleIndex != 1 || len(w.Locations) != 0 {
		t.Fatalf("warning = %+v", w)
	}
}
