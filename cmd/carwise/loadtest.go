package main

import (
	"github.com/okian/carwise/internal/loadtest"
	"github.com/okian/carwise/pkg/logger"
	"github.com/spf13/cobra"
)

func newLoadTestCmd() *cobra.Command {
	cfg := loadtest.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit concurrent repair requests to a running server and verify idempotency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			// Logs go to stderr so stdout carries only the report.
			if _, err := setup(ctx, logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			rep, err := loadtest.Run(ctx, cfg)
			if perr := printJSON(cmd.OutOrStdout(), rep); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the carwise server")
	fs.IntVar(&cfg.Requests, "requests", cfg.Requests, "number of repair requests to send, replays included")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent submitters")
	fs.Float64Var(&cfg.ReplayRatio, "replay-ratio", cfg.ReplayRatio, "share of requests that resend an earlier request_id")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall deadline")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "ticket status poll interval")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 picks one)")
	fs.StringVar(&cfg.OutputFile, "output", "", "write the JSON report to this file")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log per-request failures and ticket references")
	return cmd
}
