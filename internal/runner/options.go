package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request when Options.Timeout is unset.
const DefaultTimeout = 5 * time.Second

// Issuer abstracts issuing a single request against a target.
// Implementations must report every failure through the returned Outcome and
// honour the deadline carried by ctx.
type Issuer interface {
	Issue(ctx context.Context, target Target) Outcome
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context, target Target) Outcome

func (f IssuerFunc) Issue(ctx context.Context, target Target) Outcome {
	return f(ctx, target)
}

// Options configure the Runner.
type Options struct {
	Targets        []Target                    // requests to issue, one per target
	Concurrency    int                         // number of worker goroutines
	Timeout        time.Duration               // per-request deadline
	RatePerSecond  int                         // requests per second pacing (0 means unlimited)
	Issuer         Issuer                      // request executor (required)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	total := len(o.Targets)
	if o.Concurrency <= 0 || o.Concurrency > total {
		o.Concurrency = total
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
