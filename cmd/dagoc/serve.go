package main

import (
	"context"

	apihttp "github.com/aescanero/dagoc/pkg/api/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the compiler HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := c.logger

			logger.Info("starting dagoc",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.Int("http_port", c.cfg.HTTPPort))

			a, err := buildApp(ctx, c.cfg, prometheus.DefaultRegisterer, logger)
			if err != nil {
				return err
			}
			defer a.Close(logger)

			server := apihttp.NewServer(&apihttp.Config{
				Port:     c.cfg.HTTPPort,
				Compiler: a.compiler,
				Gatherer: prometheus.DefaultGatherer,
				EventBus: a.eventBus,
				Logger:   logger,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil {
					errCh <- err
				}
				close(errCh)
			}()

			logger.Info("dagoc started successfully")

			select {
			case <-ctx.Done():
				logger.Info("received shutdown signal")
			case err, ok := <-errCh:
				if ok {
					logger.Error("HTTP server error", zap.Error(err))
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", zap.Error(err))
			}

			logger.Info("dagoc stopped")
			return nil
		},
	}
}
