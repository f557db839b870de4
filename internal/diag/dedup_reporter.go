package diag

import "keystone/internal/source"

type dedupKey struct {
	code     Code
	sev      Severity
	at       source.Ref
	contract string
	msg      string
}

func keyOf(d *Diagnostic) dedupKey {
	return dedupKey{
		code:     d.Code,
		sev:      d.Severity,
		at:       d.Primary,
		contract: d.ContractID(),
		msg:      d.Message,
	}
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, position, contract and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := keyOf(&d)
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
