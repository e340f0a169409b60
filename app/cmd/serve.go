package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"uistudio/app/config"
	"uistudio/app/usecase"
	"uistudio/internal/infrastructure/metrics"
	"uistudio/internal/infrastructure/transport"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the run worker and the metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, opts)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, opts *rootOptions) error {
	logger := opts.logger()

	ctx, stop := signalContext(parent)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, true)
	if err != nil {
		logger.Error("startup failed", "err", err)
		return err
	}

	worker := usecase.NewWorker(a.runs, a.generation, cfg.Worker.Interval, cfg.Worker.Concurrency, logger)
	worker.Start(ctx)

	handler := transport.NewStudioHandler(a.generation, a.runSvc, a.fileSvc, logger)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           corsHandler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	metricsSrv := metrics.NewServer(cfg.Metrics.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("starting metrics server", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "err", err)
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "err", err)
		}
		worker.Stop()
		a.close(shutdownCtx)
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Error("server failed", "err", err)
	}
	logger.Info("service stopped")
	return err
}
