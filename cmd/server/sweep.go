package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/expiry"
	"github.com/logshare/backend/internal/logging"
	"github.com/logshare/backend/internal/service"
	"github.com/logshare/backend/internal/storage"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired logs once and exit",
		Long: `Run a single expiry sweep against the configured storage. Useful from an
external scheduler when the built-in sweeper is disabled.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", zap.Error(err))
		return err
	}

	store, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		logger.Error("failed to initialize storage", zap.Error(err))
		return err
	}
	defer store.Close()

	svc := service.New(store, service.WithLogger(logger))
	removed, err := expiry.New(svc, cfg.Expiry, logger).RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired logs\n", removed)
	return nil
}
