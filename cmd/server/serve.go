package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/injector"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			app, cleanup, err := injector.InitializeApp(config, log)
			if err != nil {
				log.Error("failed to initialize app", zap.Error(err))
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.SyncDocuments(ctx)

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.HTTPServer.Start()
			}()

			log.Info("server started", zap.String("addr", config.Server.Addr()))

			select {
			case err := <-errCh:
				if err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					return err
				}
			case <-ctx.Done():
			}

			log.Info("shutting down server...")
			if err := app.HTTPServer.Stop(context.Background()); err != nil {
				log.Error("HTTP server forced to shutdown", zap.Error(err))
			}

			log.Info("server exited")
			return nil
		},
	}
}
