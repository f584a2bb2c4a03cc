package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/selfload/internal/metrics"
)

// ErrNoIssuer is returned by Run when Options.Issuer is nil.
var ErrNoIssuer = errors.New("runner: issuer is required")

// Result captures a finished run.
type Result struct {
	RunID       string
	Workers     int
	Outcomes    []Outcome // completion order, not target order
	Summary     metrics.Summary
	Percentiles metrics.Percentiles
	Duration    time.Duration
}

// Runner drains a fixed target list with a bounded pool of workers.
type Runner struct {
	opt       Options
	collector *metrics.Collector
	limiter   *rate.Limiter
	runMu     sync.Mutex // serializes Run so each summary covers one run
}

func New(opt Options) *Runner {
	opt.normalize()
	r := &Runner{opt: opt, collector: metrics.NewCollector()}
	if opt.RatePerSecond > 0 {
		r.limiter = opt.LimiterFactory(opt.RatePerSecond)
	}
	return r
}

// Workers returns the number of worker goroutines Run will start.
func (r *Runner) Workers() int {
	return r.opt.Concurrency
}

// Collector exposes the live aggregation, e.g. for progress reporting. It is
// reset at the start of every Run.
func (r *Runner) Collector() *metrics.Collector {
	return r.collector
}

// Run issues every target exactly once and returns the aggregated result.
// Per-request failures are part of the result; the returned error is
// reserved for runs that cannot start.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.opt.Issuer == nil {
		return Result{}, ErrNoIssuer
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.runMu.Lock()
	defer r.runMu.Unlock()
	r.collector.Reset()

	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = newRunID()
		ctx = WithRunID(ctx, runID)
	}
	// The run always drains the target list; only values flow from the parent.
	base := context.WithoutCancel(ctx)

	start := time.Now()
	targets := r.opt.Targets
	total := int64(len(targets))

	outcomes := make(chan Outcome, r.opt.Concurrency)
	collected := make(chan []Outcome, 1)
	go func() {
		results := make([]Outcome, 0, len(targets))
		for o := range outcomes {
			r.collector.Record(o.Code, o.Duration)
			results = append(results, o)
		}
		collected <- results
	}()

	var cursor atomic.Int64
	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				// Fetch-and-increment: each index is handed to exactly one worker.
				idx := cursor.Add(1) - 1
				if idx >= total {
					return
				}
				outcomes <- r.issue(base, targets[idx])
			}
		}()
	}
	wg.Wait()
	close(outcomes)
	results := <-collected

	return Result{
		RunID:       runID,
		Workers:     r.opt.Concurrency,
		Outcomes:    results,
		Summary:     r.collector.Summary(),
		Percentiles: r.collector.Percentiles(),
		Duration:    time.Since(start),
	}, nil
}

func (r *Runner) issue(ctx context.Context, target Target) (outcome Outcome) {
	if r.limiter != nil {
		// ctx is never cancelled and burst is at least 1, so Wait cannot fail.
		_ = r.limiter.Wait(ctx)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.opt.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			outcome = FailureOutcome(target, fmt.Errorf("issuer panic: %v", p), time.Since(start))
		}
	}()

	outcome = r.opt.Issuer.Issue(reqCtx, target)
	outcome.Index = target.Index
	if outcome.URL == "" {
		outcome.URL = target.URL
	}
	if outcome.Code == "" {
		outcome.Code = CodeError
		if outcome.Message == "" {
			outcome.Message = "issuer returned no outcome code"
		}
	}
	return outcome
}
