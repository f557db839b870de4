package driver

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"keystone/internal/check"
	"keystone/internal/contract"
	"keystone/internal/observ"
	"keystone/internal/source"
	"keystone/internal/trace"
)

// Session is the incremental mode: it re-checks only the contracts a
// changed file can affect and serves the rest from its DiagCache.
// A new call cancels the one in flight.
type Session struct {
	engine *Engine
	cache  *DiagCache

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewSession(e *Engine, cacheSize int) (*Session, error) {
	cache, err := NewDiagCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Session{engine: e, cache: cache}, nil
}

// Cache exposes the session cache for inspection.
func (s *Session) Cache() *DiagCache { return s.cache }

// Relevant returns the contracts whose locations cover file.
func Relevant(contracts []*contract.Contract, file string) []*contract.Contract {
	file = source.CleanPath(file)
	var out []*contract.Contract
	for _, c := range contracts {
		if c.Touches(file) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Cancel aborts the in-flight check, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Invalidate forgets the memoised imports of files and drops every cached
// outcome that read or covers one of them. It returns the dropped contract IDs.
// Callers batching several changes should Cancel the run in flight first.
func (s *Session) Invalidate(files ...string) []string {
	var dropped []string
	for _, f := range files {
		f = source.CleanPath(f)
		if s.engine.Index != nil {
			s.engine.Index.Forget(f)
		}
		dropped = append(dropped, s.cache.Invalidate(f)...)
	}
	slices.Sort(dropped)
	return slices.Compact(dropped)
}

// Reset drops every cached outcome and memoised import, e.g. after the
// definition itself changed.
func (s *Session) Reset() {
	s.cache.Purge()
	if s.engine.Index != nil {
		s.engine.Index.Reset()
	}
}

// CheckRelevant re-runs the contracts affected by changedFile and merges
// them with cached outcomes of the rest. Contracts without a cache entry
// are computed as well, so an empty changedFile checks everything cold.
func (s *Session) CheckRelevant(ctx context.Context, contracts []*contract.Contract, changedFile string) (*Result, error) {
	ctx, gen := s.begin(ctx)
	defer s.finish(gen)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check-relevant")
	defer span.End(changedFile)

	changed := source.CleanPath(changedFile)
	if changedFile != "" {
		s.Invalidate(changed)
	}

	outcomes := make([]check.Outcome, len(contracts))
	var todo []int
	for i, c := range contracts {
		if out, ok := s.cache.Get(c.ID); ok && !(changedFile != "" && c.Touches(changed)) {
			outcomes[i] = out
			continue
		}
		todo = append(todo, i)
	}
	run := make([]*contract.Contract, len(todo))
	for j, i := range todo {
		run[j] = contracts[i]
	}

	timer := observ.NewTimer()
	idx := timer.Begin("check")
	fresh, err := s.engine.checkParallel(ctx, run, timer)
	if err != nil {
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d of %d contracts", len(run), len(contracts)))

	// a newer call may have cancelled us after the last contract finished
	s.mu.Lock()
	err = ctx.Err()
	if err == nil {
		for j, i := range todo {
			s.cache.Put(contracts[i], fresh[j])
		}
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for j, i := range todo {
		outcomes[i] = fresh[j]
	}

	res := s.engine.assemble(outcomes)
	res.Timing = timer.Report(5)
	return res, nil
}
