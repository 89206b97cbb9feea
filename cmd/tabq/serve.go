package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vegasq/tabq/internal/logger"
	"github.com/vegasq/tabq/internal/metrics"
	"github.com/vegasq/tabq/reader"
	"github.com/vegasq/tabq/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve datasets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, root)
		},
	}
}

func serve(ctx context.Context, root *rootOptions) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	log := logger.Get()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ExpectedSecret() == "" {
		log.Warn("no shared secret configured, gated routes will fail", "env", cfg.Env)
	}

	reg, err := openRegistry(cfg, reader.WithLogger(log), reader.WithReloadHook(metrics.ObserveReload))
	if err != nil {
		return err
	}
	if cfg.Catalog.ReloadSchedule != "" {
		if err := reg.StartReload(cfg.Catalog.ReloadSchedule); err != nil {
			return err
		}
		defer reg.Stop()
	}

	srv := server.New(server.Options{
		Source:     reg,
		Engine:     cfg.Engine(),
		Authorizer: server.SecretGate{Expected: cfg.ExpectedSecret()},
		Logger:     log,
		CORSOrigin: cfg.Server.CORSOrigin,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", httpServer.Addr, "env", cfg.Env, "catalog", cfg.Catalog.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
