package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/config"
	"github.com/alfredjeanlab/orgwidget/internal/events"
	"github.com/alfredjeanlab/orgwidget/internal/i18n"
	"github.com/alfredjeanlab/orgwidget/internal/metrics"
	"github.com/alfredjeanlab/orgwidget/internal/presence"
	"github.com/alfredjeanlab/orgwidget/internal/server"
	"github.com/alfredjeanlab/orgwidget/internal/store"
	"github.com/alfredjeanlab/orgwidget/internal/store/postgres"
	dirsync "github.com/alfredjeanlab/orgwidget/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the storefront service (HTTP and gRPC)",
	GroupID: "system",
	Args:    cobra.NoArgs,
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, slog.LevelInfo)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (ORGWIDGET_NATS_URL not set)")
		}

		bundle, err := i18n.NewBundle()
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}

		m := metrics.New()
		srv := server.NewServer(st, publisher,
			server.WithMetrics(m),
			server.WithBundle(bundle),
			server.WithLogger(logger),
			server.WithWidgetConfig(server.WidgetConfig{
				Namespace:     cfg.Namespace,
				RootPath:      cfg.RootPath,
				SecureCookies: cfg.SecureCookies,
			}),
		)
		if cfg.SessionIdleTimeout > 0 {
			srv.StartReaper(presence.ReaperConfig{IdleTimeout: cfg.SessionIdleTimeout})
			logger.Info("session reaper started", "idle_timeout", cfg.SessionIdleTimeout)
		}
		grpcServer := server.NewGRPCServer(srv, cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			srv.Stop()
			publisher.Close()
			st.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSync(cfg, st)

		logger.Info("orgwidget server started", "grpc_addr", cfg.GRPCAddr, "http_addr", cfg.HTTPAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		srv.Stop()
		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// startSync starts the export scheduler when a destination is configured.
// It returns nil when sync is disabled.
func startSync(cfg *config.Config, st store.Store) *dirsync.Scheduler {
	if !cfg.SyncEnabled() {
		return nil
	}
	var dests []dirsync.Destination
	if cfg.SyncS3Bucket != "" {
		s3Dest, err := dirsync.NewS3Destination(context.Background(), cfg.SyncS3Bucket, cfg.SyncS3Key, cfg.SyncS3Region, cfg.SyncS3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
		}
	}
	if cfg.SyncGitRepo != "" {
		dests = append(dests, dirsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch))
		logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
	}
	if len(dests) == 0 {
		return nil
	}
	scheduler := dirsync.NewScheduler(st, dests, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return scheduler
}
