package diag

import (
	"fmt"
	"slices"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
	Contract string
}

// FormatShort renders diagnostics one per line as
// "severity CODE path:line:col message", 1-based column, sorted
// deterministically. Notes are rendered as "note" lines when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], includeNotes)
	}
	slices.SortStableFunc(rendered, func(a, b goldenDiagnostic) int {
		if a.Path != b.Path {
			return strings.Compare(a.Path, b.Path)
		}
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		if a.Column != b.Column {
			return int(a.Column) - int(b.Column)
		}
		if a.Code != b.Code {
			return strings.Compare(a.Code, b.Code)
		}
		if a.Contract != b.Contract {
			return strings.Compare(a.Contract, b.Contract)
		}
		return strings.Compare(a.Message, b.Message)
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Path:     d.Primary.File,
		Line:     d.Primary.Line,
		Column:   d.Primary.Col + 1,
		Message:  SanitizeMessage(d.Message),
		Contract: d.ContractID(),
	})
	if includeNotes {
		for _, note := range d.Notes {
			if note.Ref.IsZero() {
				continue
			}
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     note.Ref.File,
				Line:     note.Ref.Line,
				Column:   note.Ref.Col + 1,
				Message:  SanitizeMessage(note.Msg),
				Contract: d.ContractID(),
			})
		}
	}
	return out
}

// SanitizeMessage folds a message onto a single line.
func SanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
