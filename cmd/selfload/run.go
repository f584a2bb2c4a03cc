package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/torosent/selfload/internal/config"
	"github.com/torosent/selfload/internal/httpclient"
	"github.com/torosent/selfload/internal/logging"
	"github.com/torosent/selfload/internal/output"
	"github.com/torosent/selfload/internal/runner"
	"github.com/torosent/selfload/internal/tracing"
)

const progressInterval = time.Second

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one load job and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runLoad(ctx, cmd, cfg)
		},
	}
	config.RegisterFlags(cmd)
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().FromFlags(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLoad(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		// Flush spans even after an interrupt.
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WithError(err).Warn("tracing shutdown")
		}
	}()

	targets, err := runner.BuildTargets(cfg.Host, cfg.Endpoints, cfg.Requests)
	if err != nil {
		return err
	}

	issuer, err := httpclient.NewIssuer(httpclient.NewClient(cfg.EffectiveConcurrency()), httpclient.IssuerOptions{
		Method:    cfg.Method,
		Headers:   cfg.Headers,
		Tracer:    provider.Tracer(),
		Propagate: provider.ShouldPropagate(),
	})
	if err != nil {
		return err
	}
	var iss runner.Issuer = issuer
	if cfg.LogErrors {
		iss = runner.WithLogging(iss, logging.NewFailureLogger(logger))
	}

	r := runner.New(runner.Options{
		Targets:       targets,
		Concurrency:   cfg.Concurrency,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.Rate,
		Issuer:        iss,
	})

	var progress *output.ProgressReporter
	if cfg.Output == config.OutputText {
		progress = output.NewProgressReporter(r.Collector(), len(targets), progressInterval, cmd.ErrOrStderr())
		progress.Start()
	}

	logger.WithFields(logrus.Fields{
		"requests": len(targets),
		"workers":  r.Workers(),
		"timeout":  cfg.Timeout.String(),
	}).Debug("starting run")

	result, err := r.Run(ctx)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}

	return output.Print(cmd.OutOrStdout(), cfg.Output, output.NewReport(*cfg, result))
}
