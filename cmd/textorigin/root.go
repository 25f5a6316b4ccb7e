package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"textorigin/internal/config"
)

type globalFlags struct {
	configPath string
}

func rootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "textorigin",
		Short:         "Human vs. AI text classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "configs/config.yml", "Path to the YAML config file")

	rootCmd.AddCommand(
		serveCommand(flags),
		trainCommand(flags),
		hashPasswordCommand(),
	)
	return rootCmd
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLoggers builds the application logger and the JSON audit logger for admin
// authentication events.
func newLoggers(cfg *config.Config) (*zap.Logger, *logrus.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	audit := logrus.New()
	audit.SetOutput(os.Stdout)
	audit.SetFormatter(&logrus.JSONFormatter{})
	if l, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		audit.SetLevel(l)
	}
	return logger, audit, nil
}
