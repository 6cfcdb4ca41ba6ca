package ui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Progress tracks completion of parallel tasks with a simple counter display.
type Progress struct {
	out       io.Writer
	total     int
	completed atomic.Int32
	failed    atomic.Int32
	mu        sync.Mutex
}

// NewProgress creates a progress tracker for n tasks.
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{out: out, total: total}
}

// Done marks one task as completed and prints the current progress. A
// non-nil err marks the task as failed.
func (p *Progress) Done(label string, err error) {
	n := int(p.completed.Add(1))
	status := okStyle.Render("ok")
	if err != nil {
		p.failed.Add(1)
		status = failStyle.Render("failed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		_, _ = fmt.Fprintf(p.out, "[%d/%d] %s %s: %v\n", n, p.total, status, label, err)
		return
	}
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s %s\n", n, p.total, status, label)
}

// Failed returns the number of tasks reported with an error.
func (p *Progress) Failed() int {
	return int(p.failed.Load())
}

// Log prints an informational message within the progress context.
func (p *Progress) Log(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
