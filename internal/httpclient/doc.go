// Package httpclient issues the individual HTTP requests of a load run.
//
// [Issuer] implements runner.Issuer on top of a shared *http.Client:
//
//	client := httpclient.NewClient(cfg.EffectiveConcurrency())
//	issuer, err := httpclient.NewIssuer(client, httpclient.IssuerOptions{
//		Method:  cfg.Method,
//		Headers: cfg.Headers,
//	})
//	outcome := issuer.Issue(ctx, runner.Target{URL: "http://localhost:3000/healthz"})
//
// The request deadline comes from ctx. A response of any status is an
// outcome coded with that status; an expired deadline is coded "timeout";
// every other failure is coded "error". Issue never returns an error and
// never panics on transport failures.
//
// When a tracer is configured each request is wrapped in a client span and,
// optionally, W3C trace context headers are injected. See
// [github.com/torosent/selfload/internal/tracing].
package httpclient
