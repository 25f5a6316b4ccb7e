package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textorigin/internal/app"
)

func trainCommand(flags *globalFlags) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Retrain the model once and write the artifact",
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

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, logger, audit)
			if err != nil {
				return err
			}
			defer a.Close()

			if seed {
				if err := a.Seed(ctx); err != nil {
					return err
				}
			}
			res, err := a.Detector.Train(ctx)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model v%d trained on %d samples, written to %s\n",
				res.Version, res.Samples, cfg.Model.ArtifactPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed an empty corpus before training")
	return cmd
}
