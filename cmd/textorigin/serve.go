package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"textorigin/internal/app"
)

func serveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, audit, err := newLoggers(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()
			gin.SetMode(cfg.Server.GinMode)

			// Context for graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(ctx, cfg, logger, audit)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Seed(ctx); err != nil {
				return err
			}
			if err := a.InitModel(ctx); err != nil {
				return err
			}

			if err := a.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Application stopped.")
			return nil
		},
	}
}
