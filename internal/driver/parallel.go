package driver

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"keystone/internal/check"
	"keystone/internal/contract"
	"keystone/internal/observ"
	"keystone/internal/trace"
)

// checkParallel runs contracts on a bounded worker pool. Every worker writes
// only its own slot of the result slice.
func (e *Engine) checkParallel(ctx context.Context, contracts []*contract.Contract, timer *observ.Timer) ([]check.Outcome, error) {
	results := make([]check.Outcome, len(contracts))
	if len(contracts) == 0 {
		return results, nil
	}
	jobs := e.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(contracts)))
	progress := newProgress(e.Observer, len(contracts))

	for i, c := range contracts {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			cctx, span := trace.Start(gctx, trace.ScopeContract, c.ID)
			started := time.Now()
			out, err := check.Check(cctx, e.Env, c)
			dur := time.Since(started)
			if err != nil {
				span.End("cancelled")
				return err
			}
			span.WithExtra("violations", itoa(len(out.Diagnostics))).End("")
			if timer != nil {
				timer.Record(c.ID, dur)
			}
			results[i] = out
			progress.done(c, len(out.Diagnostics))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
