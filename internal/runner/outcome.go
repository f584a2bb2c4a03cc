package runner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// Outcome codes for requests that did not produce an HTTP response.
const (
	CodeTimeout = "timeout"
	CodeError   = "error"
)

// Target is one entry of the run's target list.
type Target struct {
	Index int
	URL   string
}

// Outcome is the result of issuing a single target.
type Outcome struct {
	Index    int
	URL      string
	Code     string // decimal HTTP status, CodeTimeout or CodeError
	Duration time.Duration
	Message  string // set only for CodeTimeout and CodeError
}

// DurationMs returns the elapsed time in milliseconds.
func (o Outcome) DurationMs() float64 {
	return float64(o.Duration) / float64(time.Millisecond)
}

// Failed reports whether the request ended without an HTTP response.
func (o Outcome) Failed() bool {
	return o.Code == CodeTimeout || o.Code == CodeError
}

// StatusOutcome builds the outcome of a request that received a response.
func StatusOutcome(target Target, status int, elapsed time.Duration) Outcome {
	return Outcome{
		Index:    target.Index,
		URL:      target.URL,
		Code:     strconv.Itoa(status),
		Duration: elapsed,
	}
}

// FailureOutcome builds the outcome of a request that failed before a
// response arrived.
func FailureOutcome(target Target, err error, elapsed time.Duration) Outcome {
	code := Classify(err)
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	if code == CodeTimeout {
		msg = "request timed out: " + msg
	}
	return Outcome{
		Index:    target.Index,
		URL:      target.URL,
		Code:     code,
		Duration: elapsed,
		Message:  msg,
	}
}

// Classify maps a transport error to CodeTimeout or CodeError.
func Classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	return CodeError
}
