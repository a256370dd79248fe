package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logshare/backend/internal/api"
	"github.com/logshare/backend/internal/expiry"
	"github.com/logshare/backend/internal/logging"
	"github.com/logshare/backend/internal/metrics"
	"github.com/logshare/backend/internal/service"
	"github.com/logshare/backend/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the expiry sweeper",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", zap.Error(err))
		return err
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return err
	}
	defer store.Close()

	svc := service.New(store, service.WithLogger(logger))

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			logger.Error("failed to register metrics", zap.Error(err))
			return err
		}
		gatherer = prometheus.DefaultGatherer
	}

	e := api.NewServer(&api.Dependencies{
		Service:  svc,
		Config:   cfg,
		Logger:   logger,
		Version:  Version,
		Gatherer: gatherer,
	})

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("addr", s.Addr),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("storage_path", cfg.StoragePath()),
		zap.Duration("retention", cfg.Storage.Retention),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Expiry.Enabled {
		sweeper := expiry.New(svc, cfg.Expiry, logger)
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	} else {
		logger.Warn("expiry sweeper disabled, logs will not be removed")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
