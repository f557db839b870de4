// Package observ measures where a check run spends its time.
package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase records the duration of one pipeline phase or one contract.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks run phases and per-contract samples. It is safe for
// concurrent use: workers Record samples while the driver owns phases.
type Timer struct {
	mu      sync.Mutex
	phases  []Phase
	samples []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Record adds a finished sample (one contract check).
func (t *Timer) Record(name string, dur time.Duration) {
	t.mu.Lock()
	t.samples = append(t.samples, Phase{Name: name, Dur: dur})
	t.mu.Unlock()
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report(5)
	var out strings.Builder
	out.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&out, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			out.WriteString("  // " + p.Note)
		}
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	if len(report.Slowest) > 0 {
		out.WriteString("slowest contracts:\n")
		for _, p := range report.Slowest {
			fmt.Fprintf(&out, "  %7.2f ms  %s\n", p.DurationMS, p.Name)
		}
	}
	return out.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	Slowest []PhaseReport `json:"slowest,omitempty"`
}

// Report формирует срез фаз, общую длительность и topN самых медленных контрактов.
func (t *Timer) Report(topN int) Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var report Report
	var total time.Duration
	for _, phase := range t.phases {
		total += phase.Dur
		report.Phases = append(report.Phases, toReport(phase))
	}
	report.TotalMS = durationToMillis(total)

	samples := slices.Clone(t.samples)
	slices.SortStableFunc(samples, func(a, b Phase) int {
		if c := cmp.Compare(b.Dur, a.Dur); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	for i := 0; i < len(samples) && i < topN; i++ {
		report.Slowest = append(report.Slowest, toReport(samples[i]))
	}
	return report
}

func toReport(p Phase) PhaseReport {
	return PhaseReport{Name: p.Name, DurationMS: durationToMillis(p.Dur), Note: p.Note}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
