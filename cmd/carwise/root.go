package main

import (
	"context"
	"fmt"

	"github.com/okian/carwise/internal/config"
	"github.com/okian/carwise/pkg/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "carwise",
		Short:        "Used-car checks, diagnoses, garages and repair quotes",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCmd(), newAssessCmd(), newPriceCmd(), newLoadTestCmd())
	return root
}

// setup loads configuration (defaults, optional file, env) and initializes
// the global logger from it. opts are applied after the configured format.
func setup(ctx context.Context, opts ...logger.Option) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(append([]logger.Option{logger.WithFormat(cfg.LogFormat)}, opts...)...); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel),
			logger.Error(err),
		)
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
