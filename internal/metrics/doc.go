// Package metrics reduces per-request outcomes into a run summary.
//
// The central [Collector] type is fed one outcome at a time by the runner's
// collecting goroutine:
//
//	collector := metrics.NewCollector()
//	collector.Record("200", 12*time.Millisecond)
//	collector.Record("timeout", 5*time.Second)
//
//	summary := collector.Summary()
//
// # Summary
//
// The [Summary] type is the JSON-serializable result of a run:
//   - TotalCompleted: number of recorded outcomes
//   - Counts: occurrences per outcome code ("200", "404", "timeout", "error")
//   - Latency: count, mean, min and max in milliseconds
//
// An empty collector reports a nil Min (serialized as null) and a zero Max.
// The asymmetry is kept for compatibility with existing consumers of the
// report.
//
// # Percentiles
//
// Latencies are also recorded in an HDR histogram; [Collector.Percentiles]
// exposes P50/P90/P99 for the human-readable report.
//
// # Thread Safety
//
// All Collector methods are safe for concurrent use.
package metrics
