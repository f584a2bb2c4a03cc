// Package logging builds the process logger and adapts it to runner failure
// logging.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/torosent/selfload/internal/runner"
)

// New returns a text logger writing to w (stderr when nil) at the given level.
func New(level string, w io.Writer) (*logrus.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return logger, nil
}

// FailureLogger logs timeout and error outcomes as warnings.
type FailureLogger struct {
	log logrus.FieldLogger
}

var _ runner.FailureLogger = (*FailureLogger)(nil)

func NewFailureLogger(log logrus.FieldLogger) *FailureLogger {
	return &FailureLogger{log: log}
}

func (l *FailureLogger) LogFailure(ctx context.Context, outcome runner.Outcome) {
	fields := logrus.Fields{
		"url":         outcome.URL,
		"index":       outcome.Index,
		"code":        outcome.Code,
		"duration_ms": outcome.DurationMs(),
	}
	if id := runner.RunIDFromContext(ctx); id != "" {
		fields["run_id"] = id
	}
	l.log.WithFields(fields).Warn(outcome.Message)
}
