package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/selfload/internal/runner"
	"github.com/torosent/selfload/internal/tracing"
)

// maxDrainBytes caps how much of a response body is read so the connection
// can be reused.
const maxDrainBytes = 1024 * 1024

// IssuerOptions configure an Issuer.
type IssuerOptions struct {
	Method    string            // defaults to GET
	Headers   map[string]string // sent with every request
	Tracer    trace.Tracer      // nil disables spans
	Propagate bool              // inject W3C trace context headers
}

// Issuer issues single HTTP requests and reports their outcome.
type Issuer struct {
	client    *http.Client
	method    string
	headers   http.Header
	tracer    trace.Tracer
	propagate bool
}

func NewIssuer(client *http.Client, opts IssuerOptions) (*Issuer, error) {
	if client == nil {
		return nil, errors.New("http client cannot be nil")
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	headers := http.Header{}
	for key, value := range opts.Headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}
		headers.Set(canonicalKey, value)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("selfload")
	}

	return &Issuer{
		client:    client,
		method:    method,
		headers:   headers,
		tracer:    tracer,
		propagate: opts.Propagate,
	}, nil
}

// Issue sends one request to target.URL and classifies the result.
func (i *Issuer) Issue(ctx context.Context, target runner.Target) runner.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	ctx, span := tracing.StartRequestSpan(ctx, i.tracer, i.method, target.URL)

	req, err := http.NewRequestWithContext(ctx, i.method, target.URL, nil)
	if err != nil {
		return i.fail(span, target, err, start)
	}
	req.Header = i.headers.Clone()
	if i.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return i.fail(span, target, err, start)
	}
	elapsed := time.Since(start)
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()

	outcome := runner.StatusOutcome(target, resp.StatusCode, elapsed)
	tracing.EndSpan(span, nil,
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("selfload.outcome", outcome.Code),
	)
	return outcome
}

func (i *Issuer) fail(span trace.Span, target runner.Target, err error, start time.Time) runner.Outcome {
	outcome := runner.FailureOutcome(target, err, time.Since(start))
	tracing.EndSpan(span, err, attribute.String("selfload.outcome", outcome.Code))
	return outcome
}
