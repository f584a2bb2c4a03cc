package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSettingInt(t *testing.T) {
	tests := []struct {
		input  interface{}
		want   int
		wantOK bool
	}{
		{123, 123, true},
		{"456", 456, true},
		{" 12abc", 12, true},
		{int64(789), 789, true},
		{float64(10.9), 10, true},
		{float64(1e12), maxSettingInt, true},
		{"many", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := settingInt(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("settingInt(%v) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSettingTimeout(t *testing.T) {
	tests := []struct {
		input  interface{}
		want   time.Duration
		wantOK bool
	}{
		{2500, 2500 * time.Millisecond, true},
		{float64(100), 100 * time.Millisecond, true},
		{"750", 750 * time.Millisecond, true},
		{"2s", 2 * time.Second, true},
		{"300ms", 300 * time.Millisecond, true},
		{time.Second, time.Second, true},
		{"soon", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := settingTimeout(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("settingTimeout(%v) = (%s, %v), want (%s, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{}
	settings := map[string]interface{}{
		"requests":    50,
		"concurrency": "5",
		"timeout":     "1500",
		"endpoints":   []interface{}{"/a", "/b"},
		"target":      "http://svc:8080",
		"method":      "post",
		"headers":     map[string]interface{}{"x-api-key": "secret"},
		"log_errors":  true,
		"tracing": map[string]interface{}{
			"endpoint":     "collector:4317",
			"service_name": "loadgen",
			"sample_rate":  0.25,
			"propagate":    "true",
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.Requests != 50 || cfg.Concurrency != 5 {
		t.Errorf("unexpected load settings: requests=%d concurrency=%d", cfg.Requests, cfg.Concurrency)
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %s, want 1.5s", cfg.Timeout)
	}
	if len(cfg.Endpoints) != 2 || cfg.Endpoints[1] != "/b" {
		t.Errorf("Endpoints = %v", cfg.Endpoints)
	}
	if cfg.Host != "http://svc:8080" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Headers["X-Api-Key"] != "secret" {
		t.Errorf("expected canonical header key, got %v", cfg.Headers)
	}
	if !cfg.LogErrors {
		t.Error("LogErrors = false, want true")
	}
	if cfg.Tracing.Endpoint != "collector:4317" || cfg.Tracing.ServiceName != "loadgen" || cfg.Tracing.SampleRate != 0.25 || !cfg.Tracing.Propagate {
		t.Errorf("unexpected tracing config %+v", cfg.Tracing)
	}
}

func TestApplyConfigSettingsRejectsWrongShapes(t *testing.T) {
	cases := []map[string]interface{}{
		{"headers": []interface{}{"x"}},
		{"tracing": "on"},
		{"log_errors": "maybe"},
		{"endpoints": map[string]interface{}{"a": "/a"}},
	}
	for _, settings := range cases {
		if err := applyConfigSettings(&Config{}, settings); err == nil {
			t.Errorf("expected error for %v", settings)
		}
	}
}

func TestApplyConfigSettingsDefaultsUnparsableNumbers(t *testing.T) {
	cfg := &Config{}
	settings := map[string]interface{}{
		"requests":    "many",
		"concurrency": "lots",
		"timeout":     "soon",
		"rate":        []interface{}{1},
	}
	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v, want silent defaults", err)
	}
	cfg.Normalize()

	if cfg.Requests != DefaultRequests || cfg.Concurrency != DefaultConcurrency {
		t.Errorf("requests/concurrency = %d/%d, want defaults", cfg.Requests, cfg.Concurrency)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Rate != 0 {
		t.Errorf("Rate = %d, want 0", cfg.Rate)
	}
}

func TestParseTracingConfigSampleRate(t *testing.T) {
	tc, err := parseTracingConfig(map[string]interface{}{"endpoint": "collector:4317"})
	if err != nil {
		t.Fatalf("parseTracingConfig() error = %v", err)
	}
	if tc.SampleRate != DefaultSampleRate {
		t.Errorf("absent sample_rate = %g, want %g", tc.SampleRate, DefaultSampleRate)
	}

	tc, err = parseTracingConfig(map[string]interface{}{"sample_rate": 0})
	if err != nil {
		t.Fatalf("parseTracingConfig() error = %v", err)
	}
	cfg := Config{Tracing: tc}
	cfg.Normalize()
	if cfg.Tracing.SampleRate != 0 {
		t.Errorf("explicit sample_rate 0 became %g", cfg.Tracing.SampleRate)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{Requests: 10, Headers: map[string]string{}}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{
		"--concurrency", "4",
		"--timeout", "250",
		"-e", "/x", "-e", "/y",
		"--header", "Authorization=Bearer abc",
		"--tracing-protocol", "HTTP",
	}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Requests != 10 {
		t.Errorf("unchanged flag overwrote Requests: %d", cfg.Requests)
	}
	if cfg.Concurrency != 4 || cfg.Timeout != 250*time.Millisecond {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.Endpoints) != 2 || cfg.Endpoints[0] != "/x" {
		t.Errorf("Endpoints = %v", cfg.Endpoints)
	}
	if cfg.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
	if cfg.Tracing.Protocol != "http" {
		t.Errorf("Tracing.Protocol = %q", cfg.Tracing.Protocol)
	}
}

func TestApplyFlagOverridesBadHeader(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--header", "novalue"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(&Config{}, fs); err == nil {
		t.Fatal("expected error for header without '='")
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"  12abc", 12, true},
		{"-5", -5, true},
		{"+7", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"3.9", 3, true},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("leadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
