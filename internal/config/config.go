package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied to missing or non-positive settings.
const (
	DefaultRequests    = 200
	DefaultConcurrency = 20
	DefaultTimeout     = 5000 * time.Millisecond
	DefaultMethod      = "GET"
	DefaultListen      = ":3000"
	DefaultSampleRate  = 1.0
)

// MaxRequests caps a single run. Larger requests are clamped, not rejected.
const MaxRequests = 1_000_000

// DefaultEndpoints are the paths hit when no endpoints are configured.
var DefaultEndpoints = []string{"/", "/healthz", "/ready", "/persons/all", "/items"}

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

type Config struct {
	Requests    int               `mapstructure:"requests"`
	Concurrency int               `mapstructure:"concurrency"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Endpoints   []string          `mapstructure:"endpoints"`
	Host        string            `mapstructure:"host"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Rate        int               `mapstructure:"rate"`
	Output      OutputFormat      `mapstructure:"output"`
	LogErrors   bool              `mapstructure:"log_errors"`
	LogLevel    string            `mapstructure:"log_level"`
	Listen      string            `mapstructure:"listen"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	ConfigFile  string            `mapstructure:"-"`
}

// TracingConfig configures OpenTelemetry span export for issued requests.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector endpoint; falls back to OTEL_EXPORTER_OTLP_ENDPOINT
	Protocol    string  `mapstructure:"protocol"`     // "grpc" (default) or "http"
	ServiceName string  `mapstructure:"service_name"` // falls back to OTEL_SERVICE_NAME, then "selfload"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"` // inject W3C traceparent into requests
}

// Enabled reports whether any tracing behavior was requested.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	cfg := &Config{Tracing: TracingConfig{SampleRate: DefaultSampleRate}}
	cfg.Normalize()
	return cfg
}

// Normalize replaces missing or non-positive values with defaults. It never
// fails: bad numeric input degrades to the default instead of being rejected.
func (c *Config) Normalize() {
	if c.Requests <= 0 {
		c.Requests = DefaultRequests
	}
	if c.Requests > MaxRequests {
		c.Requests = MaxRequests
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	endpoints := make([]string, 0, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		endpoints = append(endpoints, DefaultEndpoints...)
	}
	c.Endpoints = endpoints
	c.Host = strings.TrimSpace(c.Host)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
	if c.Rate < 0 {
		c.Rate = 0
	}
	c.Output = OutputFormat(strings.ToLower(strings.TrimSpace(string(c.Output))))
	if c.Output == "" {
		c.Output = OutputText
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = DefaultListen
	}
}

// EffectiveConcurrency is the number of workers a run will use:
// min(concurrency, requests), floored at 1.
func (c Config) EffectiveConcurrency() int {
	n := c.Concurrency
	if c.Requests < n {
		n = c.Requests
	}
	if n < 1 {
		n = 1
	}
	return n
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate reports settings the CLI cannot act on. Load parameters are
// never rejected; Normalize handles them.
func (c Config) Validate() error {
	var issues []string

	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output must be one of text, json, yaml (got %q)", c.Output))
	}

	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}

	for key, value := range c.Headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header key %q", key))
			continue
		}
		if strings.ContainsAny(value, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header value for %s", key))
		}
	}

	switch strings.ToLower(c.Tracing.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol must be grpc or http (got %q)", c.Tracing.Protocol))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
