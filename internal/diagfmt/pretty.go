package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"keystone/internal/diag"
	"keystone/internal/source"
)

type palette struct {
	err, warn, info, note, fix, dim, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan, color.Bold),
		note: color.New(color.FgBlue, color.Bold),
		fix:  color.New(color.FgGreen),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.fix, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с ^ под колонкой, заметки и подсказки.
// Ожидается, что diags уже отсортированы.
func Pretty(w io.Writer, diags []diag.Diagnostic, src *Sources, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for i := range diags {
		d := &diags[i]
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		var b strings.Builder
		sev := pal.severity(d.Severity)
		if loc := location(d.Primary, src, opts.PathMode); loc != "" {
			b.WriteString(pal.bold.Sprint(loc) + ": ")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", sev.Sprint(d.Severity.String()), sev.Sprint(d.Code.ID()), d.Message)
		snippet(&b, d.Primary, src, opts.Context, sev, pal)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				b.WriteString("  " + pal.note.Sprint("note") + ": ")
				if loc := location(n.Ref, src, opts.PathMode); loc != "" {
					b.WriteString(loc + ": ")
				}
				b.WriteString(n.Msg + "\n")
			}
			if c := d.Contract; c != nil {
				fmt.Fprintf(&b, "  %s: %s (declared at %s)\n", pal.note.Sprint("contract"), c.Description, c.Decl)
			}
		}
		if opts.ShowFixes {
			for _, f := range d.Fixes {
				fmt.Fprintf(&b, "  %s: %s\n", pal.fix.Sprintf("fix[%s]", f.Name), f.Description)
			}
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// PrettySummary prints the closing line of a check run.
func PrettySummary(w io.Writer, s Summary, useColor bool) error {
	pal := newPalette(useColor)
	status := pal.fix.Sprint("ok")
	if !s.OK {
		status = pal.err.Sprint("failed")
	}
	line := fmt.Sprintf("%s: %d contract(s), %d file(s), %d violation(s), %d definition error(s)",
		status, s.Contracts, s.FilesAnalyzed, s.Violations, s.DefinitionErrors)
	if s.Truncated > 0 {
		line += fmt.Sprintf(" (%d not shown)", s.Truncated)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func location(ref source.Ref, src *Sources, mode PathMode) string {
	if ref.File == "" {
		return ""
	}
	p := src.display(ref.File, mode)
	if ref.Line == 0 {
		return p
	}
	return fmt.Sprintf("%s:%d:%d", p, ref.Line, ref.Col+1)
}

func snippet(b *strings.Builder, ref source.Ref, src *Sources, context int8, sev *color.Color, pal palette) {
	if ref.Line == 0 {
		return
	}
	f := src.file(ref.File)
	if f == nil {
		return
	}
	first := ref.Line
	if context > 0 {
		first = max(1, ref.Line-uint32(context))
	}
	last := ref.Line + uint32(max(context, 0))
	gutter := len(fmt.Sprint(last))
	for n := first; n <= last; n++ {
		text := f.GetLine(n)
		if n > ref.Line && text == "" {
			break
		}
		text = strings.ReplaceAll(text, "\t", "    ")
		fmt.Fprintf(b, "%s %s\n", pal.dim.Sprintf("%*d |", gutter, n), text)
		if n != ref.Line {
			continue
		}
		// колонка в байтах, а отступ под ^ считаем в ячейках терминала
		raw := f.GetLine(n)
		col := min(int(ref.Col), len(raw))
		prefix := strings.ReplaceAll(raw[:col], "\t", "    ")
		pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
		fmt.Fprintf(b, "%s %s%s\n", pal.dim.Sprintf("%*s |", gutter, ""), pad, sev.Sprint("^"))
	}
}
