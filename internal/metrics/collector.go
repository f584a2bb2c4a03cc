package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector aggregates request outcomes in a thread-safe manner.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	total      int64
	sumLatency time.Duration
	minLatency time.Duration
	maxLatency time.Duration
	counts     map[string]int64
}

// Summary is the aggregated view of a run.
type Summary struct {
	TotalCompleted int            `json:"totalCompleted" yaml:"totalCompleted"`
	Counts         map[string]int `json:"counts" yaml:"counts"`
	Latency        Latency        `json:"latency" yaml:"latency"`
}

// Latency holds latency statistics in milliseconds. Min is nil when nothing
// was recorded.
type Latency struct {
	Count int      `json:"count" yaml:"count"`
	Avg   float64  `json:"avg" yaml:"avg"`
	Min   *float64 `json:"min" yaml:"min"`
	Max   float64  `json:"max" yaml:"max"`
}

// Percentiles holds histogram-derived latency quantiles.
type Percentiles struct {
	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 10min with 3 significant figures.
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &Collector{
		hist:   h,
		counts: make(map[string]int64),
	}
}

// Reset discards everything recorded so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hist.Reset()
	c.total = 0
	c.sumLatency = 0
	c.minLatency = 0
	c.maxLatency = 0
	c.counts = make(map[string]int64)
}

// Record adds one outcome with the given code and latency.
func (c *Collector) Record(code string, latency time.Duration) {
	if latency < 0 {
		latency = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}

	if c.total == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
	c.sumLatency += latency
	c.total++
	c.counts[code]++
}

// Completed returns the number of outcomes recorded so far.
func (c *Collector) Completed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Count returns how many outcomes were recorded with code.
func (c *Collector) Count(code string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[code]
}

// Summary computes the aggregated statistics recorded so far.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := Summary{
		TotalCompleted: int(c.total),
		Counts:         make(map[string]int, len(c.counts)),
		Latency:        Latency{Count: int(c.total)},
	}
	for code, n := range c.counts {
		summary.Counts[code] = int(n)
	}

	if c.total > 0 {
		summary.Latency.Avg = toMillis(c.sumLatency) / float64(c.total)
		min := toMillis(c.minLatency)
		summary.Latency.Min = &min
		summary.Latency.Max = toMillis(c.maxLatency)
	}
	return summary
}

// Percentiles returns P50/P90/P99 latencies. All values are zero when no
// positive latency was recorded.
func (c *Collector) Percentiles() Percentiles {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hist.TotalCount() == 0 {
		return Percentiles{}
	}
	return Percentiles{
		P50: time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond,
		P90: time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond,
		P99: time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond,
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
