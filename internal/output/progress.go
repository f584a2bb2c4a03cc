package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/selfload/internal/metrics"
	"github.com/torosent/selfload/internal/runner"
)

// ProgressReporter periodically prints how much of a run has completed.
type ProgressReporter struct {
	collector *metrics.Collector
	total     int
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
}

func NewProgressReporter(collector *metrics.Collector, total int, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		total:     total,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
	}
}

// Start begins printing in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return
	}
	go p.run()
}

// Stop halts updates and prints a final line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		p.print()
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) print() {
	fmt.Fprintf(p.writer, "\rCompleted: %d/%d | Timeouts: %d | Errors: %d",
		p.collector.Completed(), p.total,
		p.collector.Count(runner.CodeTimeout), p.collector.Count(runner.CodeError))
}
