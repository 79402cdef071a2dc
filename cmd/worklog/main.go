package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"worklog/internal/backend"
	"worklog/internal/cli"
	apphttp "worklog/internal/http"
	"worklog/internal/log"
	"worklog/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldOperation, log.OpValidate, log.FieldError, err)
		os.Exit(1)
	}

	totals := apphttp.NewTotalsCache(cfg.TotalsCacheSize, cfg.TotalsCacheTTL)
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg,
		services.WithNotifier("totals-cache", totals))
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Service:            res.Service,
		Ready:              res.Ready,
		Totals:             totals,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting worklog server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldOperation, log.OpShutdown, log.FieldError, err)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
