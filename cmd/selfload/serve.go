package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/torosent/selfload/internal/config"
	"github.com/torosent/selfload/internal/httpclient"
	"github.com/torosent/selfload/internal/logging"
	"github.com/torosent/selfload/internal/server"
	"github.com/torosent/selfload/internal/tracing"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /admin/load and sample routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			provider, err := tracing.Init(ctx, cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.WithError(err).Warn("tracing shutdown")
				}
			}()

			srv := server.New(*cfg, server.Deps{
				Client:  httpclient.NewClient(cfg.EffectiveConcurrency()),
				Tracing: provider,
				Logger:  logger,
			})
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}
	config.RegisterFlags(cmd)
	return cmd
}
