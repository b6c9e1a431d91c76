package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	"spendwise/internal/export/google"
	applog "spendwise/internal/log"
	"spendwise/internal/storage"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting spendwise-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Sheets export is optional: without a spreadsheet the worker still
	// handles the daily task reset.
	var sheetsClient *google.Client
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err = google.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	var amqpClient *amqp.Client
	if sheetsClient != nil {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	var w *worker.Worker
	if sheetsClient != nil {
		w = worker.New(repo, sheetsClient, repo, cfg.ExportBatchSize)

		// Drain anything the queue path missed before we start consuming.
		if _, err := w.ProcessPendingExports(ctx); err != nil {
			logger.Error("Startup export check failed", "error", err)
		}

		go func() {
			if err := amqpClient.ConsumeExports(ctx, w.HandleExportMessage); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption failed", "error", err)
				}
			}
		}()

		go func() {
			ticker := time.NewTicker(cfg.ExportInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := w.ProcessPendingExports(ctx); err != nil {
						logger.Error("Periodic export rescan failed", "error", err)
					}
				}
			}
		}()
	} else {
		// No export target: the worker only resets tasks at the rollover.
		w = worker.New(repo, nil, repo, cfg.ExportBatchSize)
	}

	go func() {
		if err := w.RunTaskReset(ctx, time.Minute); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Task reset loop failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
