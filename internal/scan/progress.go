package scan

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress is the single monotonically-advancing counter of finished
// (including dropped/cancelled) requests described in spec.md §4.8. It
// is updated from many goroutines, so every mutation is atomic.
type Progress struct {
	total int64
	done  atomic.Int64
}

// NewProgress creates a counter for a run of total request slots.
func NewProgress(total int64) *Progress {
	return &Progress{total: total}
}

// Add advances the counter by n. Called once per submitted slot:
// a completed fetch, a dropped (⊥) slot, or a cancelled in-flight task.
func (p *Progress) Add(n int64) {
	p.done.Add(n)
}

// Done returns the current count.
func (p *Progress) Done() int64 {
	return p.done.Load()
}

// Total returns the run's total slot count (|wordlist| × |targets|).
func (p *Progress) Total() int64 {
	return p.total
}

// Render periodically writes a single-line percentage indicator to w
// until stop is closed. It redraws in place with a carriage return, the
// way a terminal progress bar does, and leaves a trailing newline once
// the run finishes or is stopped.
func (p *Progress) Render(w io.Writer, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.draw(w)
		case <-stop:
			p.draw(w)
			fmt.Fprintln(w)
			return
		}
	}
}

func (p *Progress) draw(w io.Writer) {
	done := p.Done()
	total := p.total
	if total <= 0 {
		total = 1
	}
	pct := float64(done) / float64(total) * 100
	fmt.Fprintf(w, "\rprogress: %d/%d (%.1f%%)", done, p.total, pct)
}
