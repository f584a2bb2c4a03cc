// Package runner provides the load run execution engine for selfload.
//
// A run issues exactly one request per target from a fixed pool of worker
// goroutines and reduces the outcomes into a [metrics.Summary]:
//   - Targets are built by round-robin over the endpoint list ([BuildTargets])
//   - Workers claim target indices from a shared atomic cursor
//   - Every request gets its own deadline (Options.Timeout)
//   - Outcomes are fanned in to a single collecting goroutine
//   - Optional requests-per-second pacing
//
// # Basic Usage
//
//	targets, err := runner.BuildTargets("http://localhost:8080", []string{"/a", "/b"}, 100)
//	if err != nil {
//		return err
//	}
//	r := runner.New(runner.Options{
//		Targets:     targets,
//		Concurrency: 10,
//		Timeout:     5 * time.Second,
//		Issuer:      myIssuer,
//	})
//	result, err := r.Run(ctx)
//
// # Issuer Interface
//
// The [Issuer] interface defines how a single target is requested:
//
//	type Issuer interface {
//		Issue(ctx context.Context, target Target) Outcome
//	}
//
// Failures are reported in the returned [Outcome], never as errors. Use
// [FailureOutcome] to classify a transport error as "timeout" or "error".
//
// # Cancellation
//
// A run always drains every target. The context passed to [Runner.Run]
// contributes values (trace spans, run metadata) but its cancellation is
// ignored; each request is bounded only by its own deadline.
//
// # Middleware
//
//   - [WithLogging]: log timeout and error outcomes
package runner
