package driver

import (
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"keystone/internal/check"
	"keystone/internal/contract"
	"keystone/internal/source"
)

type cached struct {
	contract *contract.Contract
	outcome  check.Outcome
}

// DiagCache keeps the last outcome per contract ID, bounded by LRU.
// Only Session writes to it.
type DiagCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, cached]
}

func NewDiagCache(size int) (*DiagCache, error) {
	c, err := lru.New[string, cached](size)
	if err != nil {
		return nil, fmt.Errorf("diagnostic cache: %w", err)
	}
	return &DiagCache{lru: c}, nil
}

func (c *DiagCache) Get(id string) (check.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(id)
	return e.outcome, ok
}

func (c *DiagCache) Put(k *contract.Contract, out check.Outcome) {
	c.mu.Lock()
	c.lru.Add(k.ID, cached{contract: k, outcome: out})
	c.mu.Unlock()
}

// Invalidate drops every entry that read file or whose locations cover it,
// and returns the dropped contract IDs.
func (c *DiagCache) Invalidate(file string) []string {
	file = source.CleanPath(file)
	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped []string
	for _, id := range c.lru.Keys() {
		e, ok := c.lru.Peek(id)
		if !ok {
			continue
		}
		_, read := slices.BinarySearch(e.outcome.Touched, file)
		if read || e.contract.Touches(file) {
			c.lru.Remove(id)
			dropped = append(dropped, id)
		}
	}
	slices.Sort(dropped)
	return dropped
}

func (c *DiagCache) Purge() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}

func (c *DiagCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
