package runner

import "context"

// FailureLogger logs requests that ended in a timeout or transport error.
type FailureLogger interface {
	LogFailure(ctx context.Context, outcome Outcome)
}

// loggingIssuer wraps an Issuer with failure logging.
type loggingIssuer struct {
	inner  Issuer
	logger FailureLogger
}

// WithLogging wraps an Issuer to log failed outcomes.
func WithLogging(issuer Issuer, logger FailureLogger) Issuer {
	if logger == nil {
		return issuer
	}
	return &loggingIssuer{
		inner:  issuer,
		logger: logger,
	}
}

func (l *loggingIssuer) Issue(ctx context.Context, target Target) Outcome {
	outcome := l.inner.Issue(ctx, target)
	if outcome.Failed() {
		l.logger.LogFailure(ctx, outcome)
	}
	return outcome
}
