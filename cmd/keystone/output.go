package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"keystone/internal/diag"
	"keystone/internal/diagfmt"
	"keystone/internal/driver"
	"keystone/internal/generate"
	"keystone/internal/observ"
	"keystone/internal/source"
	"keystone/internal/version"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatShort  outputFormat = "short"
	formatJSON   outputFormat = "json"
	formatSarif  outputFormat = "sarif"
)

func readFormat(value string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case formatPretty, formatShort, formatJSON, formatSarif:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", value)
	}
}

type renderOpts struct {
	format   outputFormat
	color    bool
	quiet    bool
	suggest  bool
	fullpath bool
}

// report is everything one check run prints.
type report struct {
	definition []generate.DefinitionError
	contracts  int
	result     *driver.Result
}

// diagnostics returns definition errors followed by check diagnostics.
func (r *report) diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(r.definition))
	for _, e := range r.definition {
		out = append(out, e.Diagnostic())
	}
	if r.result != nil {
		out = append(out, r.result.Diagnostics...)
	}
	return out
}

func (r *report) summary() diagfmt.Summary {
	s := diagfmt.Summary{
		Contracts:        r.contracts,
		DefinitionErrors: len(r.definition),
	}
	if r.result != nil {
		s.FilesAnalyzed = r.result.FilesAnalyzed
		s.Violations = r.result.Violations
		s.Truncated = r.result.Truncated
	}
	s.OK = s.Violations == 0 && s.DefinitionErrors == 0
	return s
}

// failed reports whether the run must exit non-zero.
func (r *report) failed() bool {
	return !r.summary().OK
}

func render(w io.Writer, r *report, root string, read func(string) ([]byte, error), opts renderOpts) error {
	diags := r.diagnostics()
	summary := r.summary()
	pathMode := diagfmt.PathModeAuto
	if opts.fullpath {
		pathMode = diagfmt.PathModeAbsolute
	}
	src := &diagfmt.Sources{Files: source.NewFileSet(root), Read: read}

	switch opts.format {
	case formatShort:
		if len(diags) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, diag.FormatShort(diags, false))
		return err
	case formatJSON:
		return diagfmt.JSON(w, diags, src, diagfmt.JSONOpts{
			PathMode:     pathMode,
			IncludeNotes: true,
			IncludeFixes: opts.suggest,
			Summary:      &summary,
		})
	case formatSarif:
		return diagfmt.Sarif(w, diags, diagfmt.SarifRunMeta{
			ToolName:       "keystone",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}

	if err := diagfmt.Pretty(w, diags, src, diagfmt.PrettyOpts{
		Color:     opts.color,
		PathMode:  pathMode,
		ShowNotes: true,
		ShowFixes: opts.suggest,
	}); err != nil {
		return err
	}
	if opts.quiet {
		return nil
	}
	if len(diags) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return diagfmt.PrettySummary(w, summary, opts.color)
}

func printTimings(out io.Writer, rep observ.Report) {
	fmt.Fprintf(out, "total %.1f ms\n", rep.TotalMS)
	for _, p := range rep.Phases {
		fmt.Fprintf(out, "  %-10s %8.1f ms  %s\n", p.Name, p.DurationMS, p.Note)
	}
	if len(rep.Slowest) == 0 {
		return
	}
	fmt.Fprintln(out, "slowest contracts:")
	for _, p := range rep.Slowest {
		fmt.Fprintf(out, "  %8.1f ms  %s\n", p.DurationMS, p.Name)
	}
}
