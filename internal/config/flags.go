package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all load and output flags on a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "selfload",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Load flags
	flags.IntP("requests", "n", DefaultRequests, "Total number of requests to send")
	flags.IntP("concurrency", "c", DefaultConcurrency, "Number of concurrent workers")
	flags.Int("timeout", int(DefaultTimeout.Milliseconds()), "Per-request timeout in milliseconds")
	flags.StringSliceP("endpoint", "e", nil, "Endpoint path or URL to hit (repeatable, round-robin)")
	flags.String("host", "", "Base URL that endpoint paths are resolved against")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")

	// Request flags
	flags.String("method", DefaultMethod, "HTTP method to use")
	flags.StringSlice("header", nil, "Additional request header in key=value form")

	// Output flags
	flags.StringP("output", "o", string(OutputText), "Report format: text, json or yaml")
	flags.Bool("log-errors", false, "Log each timed out or failed request to stderr")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Serve flags
	flags.String("listen", DefaultListen, "Listen address for the serve command")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint for request spans")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("tracing-service-name", "", "Service name reported with spans")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", DefaultSampleRate, "Fraction of requests to sample (0.0-1.0)")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetInt("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = msDuration(val)
	}
	if fs.Changed("endpoint") {
		val, err := fs.GetStringSlice("endpoint")
		if err != nil {
			return err
		}
		cfg.Endpoints = val
	}
	if fs.Changed("host") {
		val, err := fs.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = strings.TrimSpace(val)
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = OutputFormat(val)
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}
	if fs.Changed("listen") {
		val, err := fs.GetString("listen")
		if err != nil {
			return err
		}
		cfg.Listen = strings.TrimSpace(val)
	}

	if fs.Lookup("header") != nil {
		vals, err := fs.GetStringSlice("header")
		if err != nil {
			return err
		}
		if len(vals) > 0 {
			if cfg.Headers == nil {
				cfg.Headers = map[string]string{}
			}
			for _, entry := range vals {
				parts := strings.SplitN(entry, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("header must be in key=value format: %s", entry)
				}
				key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
				if key == "" {
					return fmt.Errorf("header key cannot be empty")
				}
				cfg.Headers[key] = strings.TrimSpace(parts[1])
			}
		}
	}

	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(tc *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		tc.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		tc.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		tc.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		tc.SampleRate = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		tc.Propagate = val
	}
	return nil
}
