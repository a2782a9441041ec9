package reenrich

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many names have been refreshed or failed.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	refreshed      int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total names that reports every
// reportInterval names.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.refreshed, p.failed, p.lastReported = 0, 0, 0
}

// Refreshed counts one successfully refreshed name.
func (p *ProgressTracker) Refreshed() {
	p.record(func() { p.refreshed++ })
}

// Failed counts one name that could not be refreshed.
func (p *ProgressTracker) Failed() {
	p.record(func() { p.failed++ })
}

func (p *ProgressTracker) record(count func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.done() >= p.total {
		return
	}
	count()
	if p.done()-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done()
	}
}

// Finish prints the final line. Names never reported are left uncounted.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

// Counts returns the refreshed and failed totals.
func (p *ProgressTracker) Counts() (refreshed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshed, p.failed
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

func (p *ProgressTracker) done() int {
	return p.refreshed + p.failed
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	done := p.done()
	rate := float64(done) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %d failed - %.1f names/s",
		done, p.total, percentage, p.failed, rate)
}
