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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/findex/internal/transport/chi"
	"github.com/kailas-cloud/findex/internal/version"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, _ := cmd.Flags().GetInt("port")
			return runServe(cmd.Context(), flags, port)
		},
	}
	cmd.Flags().IntP("port", "p", 0, "HTTP port (overrides http.port)")
	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, port int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if port > 0 {
		cfg.HTTP.Port = port
	}
	logger := a.logger

	logger.Info("Starting findex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_host", cfg.Engine.Host),
		zap.String("embedder", cfg.Engine.Embedder),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("client_side_embedding", cfg.Embedding.ClientSide),
		zap.Bool("native_multi_search", cfg.MultiSearchNative()),
	)

	if err := a.engine.Health(ctx); err != nil {
		// the API still starts; /health reports the engine as down
		logger.Warn("Search engine not reachable", zap.Error(err))
	}

	server := chiTransport.NewServer(
		a.searchService(),
		a.engine,
		a.healthService(),
		chiTransport.SearchDefaults{
			PageSize:      cfg.Search.DefaultPageSize,
			MaxPageSize:   cfg.Search.MaxPageSize,
			SemanticRatio: cfg.SemanticRatio(),
		},
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(cfg.Auth.APIKeys),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
