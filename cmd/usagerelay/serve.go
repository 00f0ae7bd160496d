package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usagerelay/internal/metrics"
	chiTransport "github.com/kailas-cloud/usagerelay/internal/transport/chi"
	healthuc "github.com/kailas-cloud/usagerelay/internal/usecase/health"
	usageuc "github.com/kailas-cloud/usagerelay/internal/usecase/usage"
	"github.com/kailas-cloud/usagerelay/internal/version"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the poller and the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cmd, rt)
		},
	}
}

func serve(ctx context.Context, cmd *cobra.Command, rt *runtime) error {
	cfg := rt.cfg
	logger := rt.logger

	printBanner(cmd, rt)
	logger.Info("Starting usagerelay",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", rt.env),
		zap.String("addr", cfg.Addr()),
		zap.Duration("interval", cfg.PollInterval()),
		zap.Duration("upstream_timeout", cfg.UpstreamTimeout()),
	)
	rt.warnIfPlaceholderCredentials()

	server := chiTransport.NewServer(usageuc.New(rt.cell), healthuc.New(rt.cell))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	handler := chiTransport.Handler(server, r)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = rt.poller.Run(pollCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err, ok := <-serveErr:
		if ok {
			logger.Error("HTTP server error", zap.Error(err))
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	cancelPoll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	wg.Wait()

	logger.Info("Server stopped gracefully")
	return runErr
}

func printBanner(cmd *cobra.Command, rt *runtime) {
	out := cmd.OutOrStdout()
	host := rt.cfg.HTTP.Host
	if host == "" {
		host = "0.0.0.0"
	}
	fmt.Fprintln(out, version.String())
	fmt.Fprintf(out, "  usage:    http://%s:%d/usage\n", host, rt.cfg.HTTP.Port)
	fmt.Fprintf(out, "  health:   http://%s:%d/health\n", host, rt.cfg.HTTP.Port)
	fmt.Fprintf(out, "  interval: %s\n", rt.cfg.PollInterval())
}
