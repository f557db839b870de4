package diag

import (
	"slices"
	"strings"
)

// Bag is a private, single-owner list of diagnostics. Checkers accumulate into
// their own Bag; the orchestrator merges them afterwards.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag capped at max items; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity.Fails() {
			return true
		}
	}
	return false
}

// CountErrors returns the number of error-severity diagnostics.
func (b *Bag) CountErrors() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity.Fails() {
			n++
		}
	}
	return n
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Truncate keeps at most n items. It is applied after Sort so the kept
// prefix is deterministic.
func (b *Bag) Truncate(n int) (dropped int) {
	if n <= 0 || len(b.items) <= n {
		return 0
	}
	dropped = len(b.items) - n
	b.items = b.items[:n]
	return dropped
}

// Sort orders diagnostics by file, line, col, severity (desc), code,
// contract ID and message for a stable output.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, Compare)
}

// Compare is the canonical diagnostic ordering used by Bag.Sort.
func Compare(a, b Diagnostic) int {
	if c := a.Primary.Compare(b.Primary); c != 0 {
		return c
	}
	// Error > Warning > Info
	if a.Severity != b.Severity {
		if a.Severity > b.Severity {
			return -1
		}
		return 1
	}
	if a.Code != b.Code {
		if a.Code < b.Code {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.ContractID(), b.ContractID()); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

// простая дедупликация (по Code+Primary+Contract+Message)
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	items := b.items[:0]
	for _, d := range b.items {
		key := keyOf(&d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, d)
	}
	b.items = items
}
