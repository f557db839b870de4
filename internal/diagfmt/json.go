package diagfmt

import (
	"encoding/json"
	"io"

	"keystone/internal/diag"
	"keystone/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line,omitempty"`
	Column uint32 `json:"column,omitempty"` // 1-based
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ContractJSON struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Declared    LocationJSON `json:"declared"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Location LocationJSON  `json:"location"`
	Contract *ContractJSON `json:"contract,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
	Fixes    []FixJSON     `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Summary     *Summary         `json:"summary,omitempty"`
}

func makeLocation(ref source.Ref, src *Sources, mode PathMode) LocationJSON {
	loc := LocationJSON{Line: ref.Line}
	if ref.File != "" {
		loc.File = src.display(ref.File, mode)
	}
	if ref.Line > 0 {
		loc.Column = ref.Col + 1
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, src *Sources, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Summary:     opts.Summary,
	}
	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, src, opts.PathMode),
		}
		if c := d.Contract; c != nil {
			dj.Contract = &ContractJSON{
				ID:          c.ID,
				Type:        c.Type.String(),
				Description: c.Description,
				Declared:    makeLocation(c.Decl, src, opts.PathMode),
			}
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: note.Msg, Location: makeLocation(note.Ref, src, opts.PathMode)})
			}
		}
		if opts.IncludeFixes {
			for _, f := range d.Fixes {
				dj.Fixes = append(dj.Fixes, FixJSON{Name: f.Name, Description: f.Description})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, diags []diag.Diagnostic, src *Sources, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(diags, src, opts))
}
