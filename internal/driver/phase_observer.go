package driver

import (
	"strconv"
	"sync"

	"keystone/internal/contract"
)

// Event reports that one contract finished.
type Event struct {
	Contract   *contract.Contract
	Violations int
	Done       int
	Total      int
}

// Observer receives events from worker goroutines, serialised by the engine.
type Observer func(Event)

type progress struct {
	mu       sync.Mutex
	obs      Observer
	finished int
	total    int
}

func newProgress(obs Observer, total int) *progress {
	return &progress{obs: obs, total: total}
}

func (p *progress) done(c *contract.Contract, violations int) {
	if p.obs == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished++
	p.obs(Event{Contract: c, Violations: violations, Done: p.finished, Total: p.total})
}

func itoa(n int) string { return strconv.Itoa(n) }
