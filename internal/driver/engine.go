// Package driver runs contract generation and checking for a project:
// batch mode (CheckAll) and incremental mode (Session).
package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"keystone/internal/check"
	"keystone/internal/contract"
	"keystone/internal/decl"
	"keystone/internal/diag"
	"keystone/internal/generate"
	"keystone/internal/imports"
	"keystone/internal/observ"
	"keystone/internal/source"
	"keystone/internal/trace"
)

// ErrNoRoot is returned when the engine is handed no symbol tree.
var ErrNoRoot = errors.New("driver: no resolved symbol tree")

// Engine holds the collaborators of one project.
type Engine struct {
	Env            *check.Env
	Index          *imports.Index // memo behind Env.Imports; Session forgets changed files here
	Jobs           int            // <= 0 means GOMAXPROCS
	MaxDiagnostics int            // <= 0 means unlimited
	Observer       Observer
}

// Result of one check run. Definition errors are reported separately by
// GenerateContracts.
type Result struct {
	Diagnostics   []diag.Diagnostic
	FilesAnalyzed int
	Violations    int
	Truncated     int
	OK            bool
	Skipped       []check.Skipped
	Timing        observ.Report
}

// GenerateContracts resolves def into contracts.
func (e *Engine) GenerateContracts(ctx context.Context, reg *generate.Registry, def *decl.Definition) (generate.Result, error) {
	if def == nil || len(def.Architectures) == 0 {
		return generate.Result{}, ErrNoRoot
	}
	for _, a := range def.Architectures {
		if a.Tree == nil || a.Tree.Len() == 0 {
			return generate.Result{}, ErrNoRoot
		}
	}
	_, span := trace.Start(ctx, trace.ScopePass, "generate")
	res := def.Generate(reg)
	span.WithExtra("contracts", fmt.Sprint(len(res.Contracts))).
		WithExtra("errors", fmt.Sprint(len(res.Errors))).
		End("")
	return res, nil
}

// CheckAll evaluates every contract and merges the outcomes
// deterministically. It fails only when ctx is cancelled.
func (e *Engine) CheckAll(ctx context.Context, contracts []*contract.Contract) (*Result, error) {
	timer := observ.NewTimer()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check-all")
	defer span.End("")

	idx := timer.Begin("check")
	outcomes, err := e.checkParallel(ctx, contracts, timer)
	if err != nil {
		timer.End(idx, "cancelled")
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d contracts", len(contracts)))

	res := e.assemble(outcomes)
	res.Timing = timer.Report(5)
	return res, nil
}

// assemble merges per-contract outcomes into one sorted result.
func (e *Engine) assemble(outcomes []check.Outcome) *Result {
	bag := diag.NewBag(0)
	files := make(map[string]struct{})
	skipped := make(map[string]check.Skipped)
	for _, out := range outcomes {
		for _, d := range out.Diagnostics {
			bag.Add(d)
		}
		for _, f := range out.Touched {
			files[f] = struct{}{}
		}
		for _, s := range out.Skipped {
			if _, ok := skipped[s.File]; !ok {
				skipped[s.File] = s
			}
		}
	}
	bag.Sort()
	bag.Dedup()

	res := &Result{
		FilesAnalyzed: len(files),
		Violations:    bag.Len(),
	}
	res.OK = !bag.HasErrors()
	if e.MaxDiagnostics > 0 {
		res.Truncated = bag.Truncate(e.MaxDiagnostics)
	}
	res.Diagnostics = bag.Items()

	for _, s := range skipped {
		res.Skipped = append(res.Skipped, s)
	}
	slices.SortFunc(res.Skipped, func(a, b check.Skipped) int { return strings.Compare(a.File, b.File) })
	if len(res.Skipped) > 0 {
		res.Diagnostics = append(res.Diagnostics, skippedWarning(res.Skipped))
	}
	return res
}

func skippedWarning(skipped []check.Skipped) diag.Diagnostic {
	d := diag.New(diag.SevWarning, diag.IOSkippedFiles, source.Ref{},
		fmt.Sprintf("%d file(s) could not be read and were skipped", len(skipped)))
	for _, s := range skipped {
		d = d.WithNote(source.Ref{File: s.File}, s.Err.Error())
	}
	return d
}
