// Package output renders run reports and live progress.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/selfload/internal/config"
	"github.com/torosent/selfload/internal/metrics"
	"github.com/torosent/selfload/internal/runner"
)

// Report is the response body of a finished run. Requests is the number of
// targets issued; Concurrency echoes the configured value, not the clamped
// worker count.
type Report struct {
	Requests    int             `json:"requests" yaml:"requests"`
	Concurrency int             `json:"concurrency" yaml:"concurrency"`
	Endpoints   []string        `json:"endpoints" yaml:"endpoints"`
	Summary     metrics.Summary `json:"summary" yaml:"summary"`

	RunID       string              `json:"-" yaml:"-"`
	Workers     int                 `json:"-" yaml:"-"`
	Duration    time.Duration       `json:"-" yaml:"-"`
	Percentiles metrics.Percentiles `json:"-" yaml:"-"`
}

// NewReport combines the effective configuration with a run result.
func NewReport(cfg config.Config, result runner.Result) Report {
	endpoints := make([]string, len(cfg.Endpoints))
	copy(endpoints, cfg.Endpoints)
	return Report{
		Requests:    cfg.Requests,
		Concurrency: cfg.Concurrency,
		Endpoints:   endpoints,
		Summary:     result.Summary,
		RunID:       result.RunID,
		Workers:     result.Workers,
		Duration:    result.Duration,
		Percentiles: result.Percentiles,
	}
}

// Print writes r in the given format.
func Print(w io.Writer, format config.OutputFormat, r Report) error {
	switch format {
	case config.OutputJSON:
		return PrintJSONReport(w, r)
	case config.OutputYAML:
		return PrintYAMLReport(w, r)
	default:
		PrintReport(w, r)
		return nil
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	s := r.Summary
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Total Requests:    %d\n", r.Requests)
	fmt.Fprintf(w, "Completed:         %d\n", s.TotalCompleted)
	fmt.Fprintf(w, "Concurrency:       %d (workers: %d)\n", r.Concurrency, r.Workers)
	fmt.Fprintf(w, "Duration:          %s\n", r.Duration.Round(time.Millisecond))
	if secs := r.Duration.Seconds(); secs > 0 {
		fmt.Fprintf(w, "Requests/sec:      %.2f\n", float64(s.TotalCompleted)/secs)
	}

	fmt.Fprintln(w, "\nLatency:")
	if s.Latency.Min != nil {
		fmt.Fprintf(w, "  Min:             %.2fms\n", *s.Latency.Min)
	} else {
		fmt.Fprintln(w, "  Min:             n/a")
	}
	fmt.Fprintf(w, "  Max:             %.2fms\n", s.Latency.Max)
	fmt.Fprintf(w, "  Mean:            %.2fms\n", s.Latency.Avg)
	fmt.Fprintf(w, "  P50:             %s\n", r.Percentiles.P50)
	fmt.Fprintf(w, "  P90:             %s\n", r.Percentiles.P90)
	fmt.Fprintf(w, "  P99:             %s\n", r.Percentiles.P99)

	fmt.Fprintln(w, "\nOutcome Codes:")
	rows := metrics.SortCounts(s.Counts)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  None")
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-16s %d\n", row.Code+":", row.Count)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
