package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"worklog/internal/amqp"
	"worklog/internal/cli"
	"worklog/internal/config"
	"worklog/internal/log"
	gsheet "worklog/internal/sheets/google"
	"worklog/internal/storage"
	"worklog/internal/store"
	"worklog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout).WithComponent(log.ComponentWorker)

	logger.Info("Starting worklog-worker", log.FieldOperation, log.OpStartup)

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	exporter, err := gsheet.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	// The SQLite database, when the server uses one, lets the worker
	// re-export everything and refresh rows after a job change.
	var loader store.SnapshotLoader
	if cfg.DataBackend == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		loader = repo
	} else {
		logger.Info("No shared database, startup and periodic re-export disabled", "backend", cfg.DataBackend)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(exporter, loader, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(gctx, syncWorker.HandleChange)
	})

	if loader != nil {
		g.Go(func() error {
			logger.Info("Performing startup sync", log.FieldOperation, log.OpSync)
			if err := syncWorker.StartupSync(gctx); err != nil && gctx.Err() == nil {
				// A failed startup export is retried by the next resync.
				logger.Error("Startup sync failed", log.FieldError, err)
			}
			return nil
		})

		if cfg.WorkerResyncInterval > 0 {
			g.Go(func() error {
				ticker := time.NewTicker(cfg.WorkerResyncInterval)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						if err := syncWorker.StartupSync(gctx); err != nil && gctx.Err() == nil {
							logger.Error("Periodic resync failed", log.FieldError, err)
						}
					}
				}
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
